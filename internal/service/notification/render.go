package notification

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/pkg/decimalx"
)

const timeLayout = "2006-01-02 15:04:05 MST"

var alertTmpl = template.Must(template.New("alert").Parse(`<div style="font-family: Arial, sans-serif; background: #0f1419; color: #e0e0e0; padding: 20px; border-radius: 8px;">
  {{if .Sell}}<h2 style="color: #00d9ff;">{{else}}<h2 style="color: #ff1493;">{{end}}{{.Title}}</h2>
  <p>The price of <strong>{{.Symbol}}</strong> {{.Movement}}:</p>
  <h1 style="font-size: 32px;">{{.Price}}</h1>
  <p>Your {{.Kind}} threshold was: <strong>{{.Threshold}}</strong></p>
  {{- if .Note}}
  <p style="font-style: italic;">{{.Note}}</p>
  {{- end}}
  <p style="color: #999; font-size: 12px;">Time: {{.Time}}</p>
</div>`))

type alertView struct {
	Title     string
	Symbol    string
	Movement  string
	Price     string
	Kind      string
	Threshold string
	Note      string
	Time      string
	Sell      bool
}

type message struct {
	Subject string
	HTML    string
	Text    string
}

func title(kind domain.AlertKind) string {
	switch kind {
	case domain.AlertBuy:
		return "Buy alert"
	case domain.AlertSell:
		return "Sell alert"
	default:
		return "Price alert"
	}
}

// renderMessage 价格和阈值保留两位小数
func renderMessage(alert Alert, note string) (message, error) {
	view := alertView{
		Title:     title(alert.Kind) + "!",
		Symbol:    alert.Symbol,
		Movement:  "dropped to",
		Price:     decimalx.Money(alert.Price),
		Kind:      alert.Kind.ToString(),
		Threshold: decimalx.Money(alert.Threshold),
		Note:      note,
		Time:      alert.At.Format(timeLayout),
	}
	if alert.Kind == domain.AlertSell {
		view.Sell = true
		view.Movement = "rose to"
	}

	var buf bytes.Buffer
	if err := alertTmpl.Execute(&buf, view); err != nil {
		return message{}, err
	}

	var text strings.Builder
	text.WriteString(view.Title + "\n")
	text.WriteString(view.Symbol + " " + view.Movement + " " + view.Price + "\n")
	text.WriteString("Your " + view.Kind + " threshold was " + view.Threshold + "\n")
	if note != "" {
		text.WriteString(note + "\n")
	}
	text.WriteString("Time: " + view.Time + "\n")

	return message{
		Subject: title(alert.Kind) + " - " + alert.Symbol,
		HTML:    buf.String(),
		Text:    text.String(),
	}, nil
}
