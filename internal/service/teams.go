package service

import (
	"net/url"
	"strings"

	"milan/internal/models"
)

type TeamsService struct {
	teams models.TeamsResponse
}

// NewTeamsService строит ответ /api/teams один раз, ссылки на фото выводятся из folder и code
func NewTeamsService(teams map[string]models.Team) *TeamsService {
	out := make(models.TeamsResponse, len(teams))
	for key, team := range teams {
		folder := team.Folder
		if folder == "" {
			folder = team.Label
		}

		members := make([]models.TeamMember, len(team.Members))
		for i, m := range team.Members {
			m.Image = TeamImagePath(folder, m.Code)
			members[i] = m
		}
		out[key] = models.TeamView{Label: team.Label, Members: members}
	}

	return &TeamsService{teams: out}
}

func (s *TeamsService) List() models.TeamsResponse {
	return s.teams
}

// TeamImagePath returns /Teams/<folder>/<code>.JPG with both segments escaped.
func TeamImagePath(folder, code string) string {
	return "/Teams/" + encodeComponent(folder) + "/" + encodeComponent(code) + ".JPG"
}

// encodeComponent escapes like a URI component: spaces become %20, not "+"
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
