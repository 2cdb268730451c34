package usecase

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

const (
	// contextNoteLimit is the number of most recent notes put into the context
	contextNoteLimit = 5
	// contextRecentMessages is the number of active conversation messages summarized as recent context
	contextRecentMessages = 4

	// NoPriorContext is emitted when memory and store data have nothing to contribute
	NoPriorContext = "No prior context."
)

//go:embed prompt/system.md
var systemPromptRaw string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptRaw))

// defaultAgentContext is used when the turn is not bound to a known agent and the client sent none
var defaultAgentContext = model.AgentContext{
	StoreName:   "this store",
	Description: "Help customers and answer their questions.",
}

type systemPromptInput struct {
	Brand              string
	StoreName          string
	Description        string
	CustomInstructions string
	Policy             string
}

// BuildContext renders memory and optional store data into the context block of the system
// instruction. The result is never empty.
func BuildContext(mem *model.Memory, storeData string) string {
	var parts []string

	if s := strings.TrimSpace(storeData); s != "" {
		parts = append(parts, "Store data:\n"+s)
	}

	if mem != nil {
		if mem.UserProfile.Name != "" {
			parts = append(parts, "User name: "+mem.UserProfile.Name)
		}
		if len(mem.UserProfile.Preferences) > 0 {
			if raw, err := json.Marshal(mem.UserProfile.Preferences); err == nil {
				parts = append(parts, "Preferences: "+string(raw))
			}
		}

		if len(mem.Notes) > 0 {
			notes := mem.Notes
			if len(notes) > contextNoteLimit {
				notes = notes[len(notes)-contextNoteLimit:]
			}
			contents := make([]string, 0, len(notes))
			for _, n := range notes {
				contents = append(contents, n.Content)
			}
			parts = append(parts, "Notes: "+strings.Join(contents, "; "))
		}

		if len(mem.Projects) > 0 {
			projects := make([]string, 0, len(mem.Projects))
			for _, p := range mem.Projects {
				projects = append(projects, fmt.Sprintf("%s: %s", p.Name, p.Description))
			}
			parts = append(parts, "Projects: "+strings.Join(projects, "; "))
		}

		if recent := mem.RecentMessages(contextRecentMessages); len(recent) > 0 {
			lines := make([]string, 0, len(recent))
			for _, m := range recent {
				lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
			}
			parts = append(parts, "Recent context: "+strings.Join(lines, " | "))
		}
	}

	if len(parts) == 0 {
		return NoPriorContext
	}
	return strings.Join(parts, "\n")
}

// BuildSystemPrompt renders the layered system instruction: identity rules, store role, then
// custom instructions and policy when present.
func BuildSystemPrompt(brand string, agentCtx *model.AgentContext) string {
	if agentCtx == nil {
		agentCtx = &defaultAgentContext
	}
	if brand == "" {
		brand = DefaultBrandName
	}

	storeName := strings.TrimSpace(agentCtx.StoreName)
	if storeName == "" {
		storeName = defaultAgentContext.StoreName
	}

	input := systemPromptInput{
		Brand:              brand,
		StoreName:          storeName,
		Description:        strings.TrimSpace(agentCtx.Description),
		CustomInstructions: strings.TrimSpace(agentCtx.CustomInstructions),
		Policy:             strings.TrimSpace(agentCtx.Policy),
	}

	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, input); err != nil {
		// Fallback keeps the identity rule even if the template breaks
		return fmt.Sprintf("You are the intelligent assistant for %s (%s). Never disclose the underlying model.", storeName, brand)
	}
	return strings.TrimRight(buf.String(), "\n")
}
