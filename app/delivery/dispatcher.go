package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmcruz/news-digest/app/database"
)

const digestSeparator = "\n\n==================================================\n\n"

// Result holds per-run dispatch accounting.
type Result struct {
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	TotalNews int `json:"total_news"`
}

// Dispatcher fans one digest out to a heterogeneous recipient list,
// counting per-recipient success and failure. A failing recipient never
// prevents the remaining ones from being attempted.
type Dispatcher struct {
	whatsapp Sender
	email    Sender
}

func NewDispatcher(whatsapp, email Sender) *Dispatcher {
	return &Dispatcher{
		whatsapp: whatsapp,
		email:    email,
	}
}

// SendDigest combines the summaries into a single digest message and
// delivers it to every recipient in order, synchronously. With no
// summaries it returns a zero result without contacting any channel.
func (d *Dispatcher) SendDigest(ctx context.Context, recipients []database.Recipient, summaries []string) Result {
	if len(summaries) == 0 {
		slog.Debug("No news to send")
		return Result{}
	}

	message := d.buildDigest(summaries)
	subject := fmt.Sprintf("Daily News Digest - %d articles", len(summaries))
	emailBody := stripMarkup(message)

	result := Result{TotalNews: len(summaries)}
	for _, recipient := range recipients {
		var err error
		switch recipient.Kind {
		case database.RecipientWhatsApp:
			err = d.whatsapp.Send(ctx, recipient.Address, "", message)
		case database.RecipientEmail:
			err = d.email.Send(ctx, recipient.Address, subject, emailBody)
		default:
			err = fmt.Errorf("unknown recipient kind: %s", recipient.Kind)
		}

		if err != nil {
			slog.Warn("Digest delivery failed", "kind", recipient.Kind, "address", recipient.Address, "error", err)
			result.Failed++
			continue
		}
		result.Success++
	}

	return result
}

func (d *Dispatcher) buildDigest(summaries []string) string {
	var b strings.Builder
	b.WriteString("🗞️ *Daily News Digest*\n\n")
	b.WriteString(strings.Join(summaries, digestSeparator))
	b.WriteString(fmt.Sprintf("\n\n📊 Total articles: %d", len(summaries)))
	return b.String()
}

// stripMarkup removes the inline emphasis markers used by the messaging
// channel; they carry no meaning in plain-text email.
func stripMarkup(message string) string {
	return strings.NewReplacer("*", "", "_", "").Replace(message)
}
