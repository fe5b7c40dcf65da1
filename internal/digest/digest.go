package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body>
  <h2>New civil cases since {{.Since.Format "Jan 2, 2006"}}</h2>
  {{if .Cases}}
  <table border="0" cellpadding="4">
    <tr><th>Docket</th><th>Town</th><th>Property Address</th><th>Case Type</th></tr>
    {{range .Cases}}
    <tr>
      <td>{{.DocketNo}}</td>
      <td>{{.Town}}</td>
      <td>{{.PropertyAddress}}</td>
      <td>{{.CaseType}}</td>
    </tr>
    {{end}}
  </table>
  {{else}}
  <p>No new cases in this period.</p>
  {{end}}
  <p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
</body>
</html>
`))

// Service renders and delivers the new-case digest to active subscribers.
type Service struct {
	db     *gorm.DB
	sender Sender
	logger *logger.Logger
}

func NewService(db *gorm.DB, sender Sender, log *logger.Logger) *Service {
	return &Service{db: db, sender: sender, logger: log}
}

type digestData struct {
	Since       time.Time
	GeneratedAt time.Time
	Cases       []database.Case
}

// Send delivers a digest of cases created since the cutoff to every active
// subscriber and records each delivery. A failed delivery skips that
// subscriber only.
func (s *Service) Send(since time.Time) error {
	var cases []database.Case
	if err := s.db.Where("created_at >= ?", since).Order("created_at DESC").Find(&cases).Error; err != nil {
		return fmt.Errorf("failed to load new cases: %w", err)
	}

	subscribers, err := s.activeSubscribers(time.Now())
	if err != nil {
		return err
	}
	if len(subscribers) == 0 {
		s.logger.Info("No active subscribers, digest skipped")
		return nil
	}

	data := digestData{Since: since, GeneratedAt: time.Now(), Cases: cases}
	htmlBody, err := renderHTML(data)
	if err != nil {
		return err
	}
	textBody := renderText(data)
	subject := fmt.Sprintf("CT Leads Digest – %d new cases", len(cases))

	sent := 0
	for _, sub := range subscribers {
		if err := s.sender.Send(sub.Email, subject, htmlBody, textBody); err != nil {
			s.logger.Error("Digest delivery failed", "email", sub.Email, "error", err)
			continue
		}
		record := database.DigestSend{SubscriberID: sub.ID, CasesSent: len(cases)}
		if err := s.db.Create(&record).Error; err != nil {
			s.logger.Warn("Failed to record digest send", "email", sub.Email, "error", err)
		}
		sent++
	}
	s.logger.Info("Digest run finished", "subscribers", len(subscribers), "sent", sent, "cases", len(cases))
	return nil
}

func (s *Service) activeSubscribers(asOf time.Time) ([]database.Subscriber, error) {
	var subs []database.Subscriber
	if err := s.db.Where("is_active = ?", true).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
	var active []database.Subscriber
	for _, sub := range subs {
		if sub.ActiveUntil == nil || !sub.ActiveUntil.Before(asOf) {
			active = append(active, sub)
		}
	}
	return active, nil
}

func renderHTML(data digestData) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

// renderText is the plain-text fallback body.
func renderText(data digestData) string {
	lines := []string{
		fmt.Sprintf("CT Leads Digest – %s", data.GeneratedAt.Format("2006-01-02 15:04")),
		"",
	}
	for _, c := range data.Cases {
		lines = append(lines, fmt.Sprintf("%s – %s – %s", c.DocketNo, c.Town, c.PropertyAddress))
	}
	return strings.Join(lines, "\n")
}
