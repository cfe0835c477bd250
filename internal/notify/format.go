package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/models"
)

var numberEmoji = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣"}

// Formatter renders chat messages. Times are shown in loc.
type Formatter struct {
	appURL string
	loc    *time.Location
}

func NewFormatter(appURL string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{appURL: strings.TrimRight(appURL, "/"), loc: loc}
}

func (f *Formatter) JoinURL(g *models.Game) string {
	return fmt.Sprintf("%s?id=%s", f.appURL, g.ID)
}

func (f *Formatter) RegisterURL(chatID int64) string {
	return fmt.Sprintf("%s/register?telegramUserId=%d", f.appURL, chatID)
}

func (f *Formatter) NewGame(g *models.Game) string {
	var b strings.Builder

	b.WriteString("🎾 <b>New Padel Game</b>\n\n")
	fmt.Fprintf(&b, "📅 Date: %s\n", f.date(g.DateTime))
	fmt.Fprintf(&b, "⏰ Time: %s\n", f.clock(g.DateTime))
	fmt.Fprintf(&b, "📍 Venue: %s\n", html.EscapeString(g.Venue.Label))
	fmt.Fprintf(&b, "🎮 Level: %s\n", html.EscapeString(g.Level.Label()))
	fmt.Fprintf(&b, "👥 Available spots: %d/%d\n", g.AvailableSpots(), models.MaxPlayers)

	if len(g.Players) > 0 {
		b.WriteString("\nPlayers:\n")
		for i, p := range g.Players {
			marker := "•"
			if i < len(numberEmoji) {
				marker = numberEmoji[i]
			}
			fmt.Fprintf(&b, "%s %s\n", marker, html.EscapeString(p.Name))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) PlayerJoined(g *models.Game, p *models.Player) string {
	var b strings.Builder

	b.WriteString("👋 <b>New Player Joined!</b>\n\n")
	fmt.Fprintf(&b, "%s joined the game on %s at %s\n\n",
		html.EscapeString(p.Name), f.date(g.DateTime), f.clock(g.DateTime))
	fmt.Fprintf(&b, "📍 Venue: %s\n", html.EscapeString(g.Venue.Label))
	fmt.Fprintf(&b, "👥 Available spots: %d/%d\n", g.AvailableSpots(), models.MaxPlayers)

	b.WriteString("\nCurrent players:\n")
	for _, pl := range g.Players {
		fmt.Fprintf(&b, "• %s\n", html.EscapeString(pl.Name))
	}

	return strings.TrimRight(b.String(), "\n")
}

// UpcomingLine is one linked line of the upcoming games list.
func (f *Formatter) UpcomingLine(g *models.Game) string {
	return fmt.Sprintf(`<a href="%s">%s - %s | %s | %s | %d/%d</a>`,
		html.EscapeString(f.JoinURL(g)),
		f.date(g.DateTime), f.clock(g.DateTime),
		html.EscapeString(g.Venue.Label),
		html.EscapeString(string(g.Level)),
		g.AvailableSpots(), models.MaxPlayers,
	)
}

func (f *Formatter) Upcoming(games []models.Game) string {
	lines := make([]string, 0, len(games))
	for i := range games {
		lines = append(lines, f.UpcomingLine(&games[i]))
	}
	return "🎾 <b>Your Upcoming Games</b>\n\n" + strings.Join(lines, "\n\n")
}

// date renders like "June 1st, 2025".
func (f *Formatter) date(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinal(t.Day()), t.Year())
}

func (f *Formatter) clock(t time.Time) string {
	return t.In(f.loc).Format("15:04")
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
