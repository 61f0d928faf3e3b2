// Package content embeds the static festival data served by the API.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"milan/internal/models"
)

//go:embed teams.json
var teamsJSON []byte

//go:embed events.json
var eventsJSON []byte

// Teams returns the team showcase keyed by team id.
func Teams() (map[string]models.Team, error) {
	var teams map[string]models.Team
	if err := json.Unmarshal(teamsJSON, &teams); err != nil {
		return nil, fmt.Errorf("decode teams.json: %w", err)
	}
	return teams, nil
}

// Events returns the festival events catalogue in file order.
func Events() ([]models.Event, error) {
	var events []models.Event
	if err := json.Unmarshal(eventsJSON, &events); err != nil {
		return nil, fmt.Errorf("decode events.json: %w", err)
	}
	return events, nil
}
