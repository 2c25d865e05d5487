package protocol

// HELLO (driver -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AgentName       string `json:"agent_name"`
	Level           string `json:"level,omitempty"` // empty = server default
}

// WELCOME (server -> driver)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	SessionID       string       `json:"session_id"`
	Level           string       `json:"level"`
	BoardWidth      int          `json:"board_width"`
	BoardHeight     int          `json:"board_height"`
	Digests         LevelDigests `json:"digests"`
	Warnings        []string     `json:"warnings,omitempty"`
}

// LevelDigests identify the exact level content a session was built from.
type LevelDigests struct {
	Maze    string `json:"maze"`
	Recipe  string `json:"recipe,omitempty"`
	Mapping string `json:"mapping,omitempty"`
	Desc    string `json:"desc,omitempty"`
}

// ACT (driver -> server): one text command per message.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Command         string `json:"command"`
}

// OBS (server -> driver): the observation after executing one command.
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Tick            int    `json:"tick"`

	Board         string           `json:"board"`
	Inventory     int              `json:"inventory"` // 0 = empty
	InventoryName string           `json:"inventory_name,omitempty"`
	Appliances    []ApplianceObs   `json:"appliances"`
	Dispensers    []DispenserObs   `json:"dispensers"`
	Code          string           `json:"code,omitempty"` // error code; empty on success
	GoalReached   bool             `json:"goal_reached"`
	Info          *InfoObs         `json:"info,omitempty"` // present only on the info command
}

type ApplianceObs struct {
	ID        string  `json:"id"`
	Pos       [2]int  `json:"pos"`
	Phase     string  `json:"phase"`
	Contents  []int   `json:"contents,omitempty"`
	Remaining int     `json:"remaining,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Output    int     `json:"output,omitempty"`
}

type DispenserObs struct {
	ID        int    `json:"id"`
	Pos       [2]int `json:"pos"`
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"` // -1 = never expires
}

type InfoObs struct {
	Description string            `json:"description"`
	Mapping     map[string]string `json:"mapping"`
}

// ERROR (server -> driver): a rejected message, session stays open.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
