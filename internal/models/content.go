package models

// TeamMember - участник команды в исходном JSON
type TeamMember struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Image string `json:"image,omitempty"`
}

// Team - команда в исходном JSON; Folder задает каталог фотографий
type Team struct {
	Label   string       `json:"label"`
	Folder  string       `json:"folder,omitempty"`
	Members []TeamMember `json:"members"`
}

// TeamView - команда в ответе /api/teams
type TeamView struct {
	Label   string       `json:"label"`
	Members []TeamMember `json:"members"`
}

// TeamsResponse - ответ /api/teams, ключ - идентификатор команды
type TeamsResponse map[string]TeamView

// Event - мероприятие фестиваля из каталога
type Event struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Venue       string  `json:"venue,omitempty"`
	Date        string  `json:"date"`
	Time        string  `json:"time,omitempty"`
	Price       float64 `json:"price"`
}

// CalendarDay - мероприятия одного дня
type CalendarDay struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}
