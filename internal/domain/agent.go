package domain

// Agent describes one of the built-in AI coaches a session can be opened with.
type Agent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Color string `json:"color"`
}

// DefaultAgentID is used for thread-backed sessions when no agent is known.
const DefaultAgentID = "agent-code"

// Agents is the built-in agent catalog.
var Agents = []Agent{
	{ID: "agent-code", Name: "Ada the Architect", Role: "Coding & Architecture Expert", Color: "blue"},
	{ID: "agent-design", Name: "Diego the Designer", Role: "UI/UX & Product Design", Color: "purple"},
	{ID: "agent-data", Name: "Daria the Data Wizard", Role: "Data Science & Analytics", Color: "green"},
	{ID: "agent-pm", Name: "Paul the Product Pro", Role: "Product Management & Strategy", Color: "amber"},
}

// LookupAgent returns the catalog entry for id.
func LookupAgent(id string) (Agent, bool) {
	for _, a := range Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}
