package engine

import (
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/schema"
)

// instruction is the tagged variant executed by the chain executor. The
// concrete types are pushInstruction, outputInstruction and
// clearInstruction; consumers switch exhaustively so a new instruction
// kind is a compile-time visible change.
type instruction interface {
	isInstruction()
}

// pushInstruction appends a literal conversation turn to history. Content
// is a template rendered just before the push.
type pushInstruction struct {
	Role    string
	Content string
}

func (pushInstruction) isInstruction() {}

// outputInstruction invokes the provider at this point in the tape.
type outputInstruction struct {
	ID       string
	Provider string
	Model    core.Model
	Tools    []string
	Format   core.Format
}

func (outputInstruction) isInstruction() {}

// clearInstruction truncates the in-flight history. With System set the
// leading system message is discarded too.
type clearInstruction struct {
	System bool
}

func (clearInstruction) isInstruction() {}

// buildTape derives the normalized instruction tape from a chain's raw
// message list. Two invariants are established here: the tape always ends
// with an output instruction (an implicit bare output is appended when the
// raw list does not end with one), and the last output receives the
// reserved default id when unnamed.
func buildTape(chain *schema.Chain) []instruction {
	tape := make([]instruction, 0, len(chain.Messages)+1)
	for _, raw := range chain.Messages {
		switch raw.Kind {
		case schema.KindMessage:
			tape = append(tape, pushInstruction{Role: raw.Message.Role, Content: raw.Message.Content})
		case schema.KindOutput:
			tape = append(tape, outputInstruction{
				ID:       raw.Output.ID,
				Provider: raw.Output.Provider,
				Model:    raw.Output.Model,
				Tools:    raw.Output.Tools,
				Format:   raw.Output.Format,
			})
		case schema.KindClear:
			tape = append(tape, clearInstruction{System: raw.Clear.System})
		}
	}

	if len(tape) == 0 {
		tape = append(tape, outputInstruction{ID: core.DefaultOutputID})
		return tape
	}

	if _, ok := tape[len(tape)-1].(outputInstruction); !ok {
		tape = append(tape, outputInstruction{})
	}

	for i := len(tape) - 1; i >= 0; i-- {
		if out, ok := tape[i].(outputInstruction); ok {
			if out.ID == "" {
				out.ID = core.DefaultOutputID
				tape[i] = out
			}
			break
		}
	}

	return tape
}
