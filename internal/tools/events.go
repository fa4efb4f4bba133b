package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// ToolEvent records one completed tool invocation: the tool name, its
// normalized arguments and its normalized result. Events are appended in
// runtime invocation order and returned alongside the agent's replies.
type ToolEvent struct {
	ToolName  string `json:"tool_name"`
	Arguments any    `json:"arguments"`
	Result    any    `json:"result"`
}

// CollectEvents walks a finished conversation in order and pairs every
// tool request with its tool response, emitting one normalized ToolEvent
// per completed call. Requests without a matching response (interrupted
// turns) produce no event.
func CollectEvents(messages []*ai.Message) []ToolEvent {
	type pendingRequest struct {
		name string
		args any
	}
	pending := make(map[string]pendingRequest)
	requestSeq := make(map[string]int)
	responseSeq := make(map[string]int)

	var events []ToolEvent
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		for _, part := range msg.Content {
			switch {
			case part.IsToolRequest():
				req := part.ToolRequest
				pending[pairKey(req.Ref, req.Name, requestSeq)] = pendingRequest{
					name: req.Name,
					args: req.Input,
				}
			case part.IsToolResponse():
				resp := part.ToolResponse
				key := pairKey(resp.Ref, resp.Name, responseSeq)
				req, ok := pending[key]
				if !ok {
					continue
				}
				delete(pending, key)
				events = append(events, ToolEvent{
					ToolName:  req.name,
					Arguments: NormalizeValue(req.args),
					Result:    NormalizeValue(resp.Output),
				})
			}
		}
	}
	return events
}

// pairKey matches a tool response back to its request. The runtime's
// call ref is the primary key. For runtimes that do not populate refs,
// requests and responses of the same tool pair up in arrival order, so
// two concurrent calls to one tool keep their own arguments.
func pairKey(ref, name string, seq map[string]int) string {
	if ref != "" {
		return ref
	}
	n := seq[name]
	seq[name]++
	return fmt.Sprintf("%s#%d", name, n)
}
