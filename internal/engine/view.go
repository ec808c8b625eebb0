package engine

// SeatView is the public face of one seat. It never carries a role.
type SeatView struct {
	Seat        int    `json:"seat"`
	Occupied    bool   `json:"occupied"`
	DisplayName string `json:"display_name,omitempty"`
	Alive       bool   `json:"alive"`
}

// PublicView is the role-free room projection broadcast in state.update.
type PublicView struct {
	RoomCode         string     `json:"room_code"`
	Status           Status     `json:"status"`
	TemplateName     string     `json:"template_name"`
	PlayerCount      int        `json:"player_count"`
	CurrentStepIndex int        `json:"current_step_index"`
	Seats            []SeatView `json:"seats"`
	LastNightDeaths  []int      `json:"last_night_deaths,omitempty"`
}

// Public projects the state into its broadcastable view.
func (s *RoomState) Public() PublicView {
	v := PublicView{
		RoomCode:         s.RoomCode,
		Status:           s.Status,
		TemplateName:     s.Template.Name,
		PlayerCount:      len(s.Players),
		CurrentStepIndex: s.CurrentStep,
		Seats:            make([]SeatView, len(s.Players)),
		LastNightDeaths:  s.LastNightDeaths,
	}
	for i, p := range s.Players {
		sv := SeatView{Seat: i}
		if p != nil {
			sv.Occupied = true
			sv.DisplayName = p.DisplayName
			sv.Alive = p.Alive
		}
		v.Seats[i] = sv
	}
	return v
}
