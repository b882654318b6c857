package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"tripdaddy/internal/models/response_models"
	"tripdaddy/pkg/config"
)

type IMailService interface {
	SendPreviewReady(ctx context.Context, to string, trip TripMail) error
	SendFullTripReady(ctx context.Context, to string, trip TripMail) error
}

// TripMail is what the trip emails need to know about an itinerary.
type TripMail struct {
	Destination string
	TripURL     string
	TotalDays   int
	Days        []response_models.DayPlan
}

type smtpMailService struct {
	cfg     config.SMTPSettings
	appName string
	htmlTpl *template.Template
	textTpl *texttemplate.Template
	log     *zap.Logger
}

// NewMailService returns an SMTP sender, or a sender that only logs when no
// SMTP password is configured.
func NewMailService(cfg *config.Config, log *zap.Logger) IMailService {
	log = log.Named("mail")
	if cfg.SMTP.Password == "" {
		log.Info("SMTP password not set, emails will be skipped")
		return &noopMailService{log: log}
	}
	return &smtpMailService{
		cfg:     cfg.SMTP,
		appName: cfg.SMTP.FromName,
		htmlTpl: template.Must(template.New("tripHTML").Parse(tripHTMLTemplate)),
		textTpl: texttemplate.Must(texttemplate.New("tripText").Parse(tripTextTemplate)),
		log:     log,
	}
}

func (s *smtpMailService) SendPreviewReady(ctx context.Context, to string, trip TripMail) error {
	subject := fmt.Sprintf("Your %s itinerary preview is ready", trip.Destination)
	intro := fmt.Sprintf("Here is a sneak peek of your %d-day trip to %s. Unlock the full plan to see every day.",
		trip.TotalDays, trip.Destination)
	return s.sendTrip(ctx, to, subject, intro, "View my preview", trip)
}

func (s *smtpMailService) SendFullTripReady(ctx context.Context, to string, trip TripMail) error {
	subject := fmt.Sprintf("Your full %s itinerary is unlocked", trip.Destination)
	intro := fmt.Sprintf("All %d days of your trip to %s are ready. Have a wonderful journey!",
		trip.TotalDays, trip.Destination)
	return s.sendTrip(ctx, to, subject, intro, "Open my itinerary", trip)
}

type emailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	Days      []response_models.DayPlan
	AppName   string
	Year      int
}

func (s *smtpMailService) sendTrip(ctx context.Context, to, subject, intro, cta string, trip TripMail) error {
	html, text, err := s.renderEmail(emailData{
		Title:     subject,
		Intro:     intro,
		ButtonURL: trip.TripURL,
		ButtonTxt: cta,
		Days:      trip.Days,
		AppName:   s.appName,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return err
	}

	msg := buildMessage(s.formatFromHeader(), to, subject, html, text)
	if err := s.deliver(ctx, to, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	s.log.Info("email sent", zap.String("subject", subject))
	return nil
}

const tripHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f8fafc; color: #0f172a; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .wrapper { width: 100%; padding: 32px 16px; box-sizing: border-box; }
    .container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 16px; overflow: hidden; box-shadow: 0 10px 40px rgba(0,0,0,0.08); }
    .header { padding: 24px 32px; border-bottom: 1px solid #e2e8f0; }
    .brand { font-weight: 700; font-size: 20px; color: #f97316; text-transform: uppercase; letter-spacing: 0.5px; }
    .hero { padding: 32px; }
    h1 { margin: 0 0 16px; font-size: 26px; line-height: 1.3; }
    p { margin: 0 0 16px; line-height: 1.6; color: #475569; }
    .day { padding: 12px 16px; margin: 8px 0; background: #fff7ed; border-radius: 10px; }
    .day strong { color: #c2410c; }
    .btn { display: inline-block; margin-top: 24px; padding: 14px 28px; background: #f97316; color: #ffffff !important; text-decoration: none; border-radius: 12px; font-weight: 600; }
    .footer { padding: 20px 32px; color: #64748b; font-size: 13px; text-align: center; border-top: 1px solid #e2e8f0; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header"><div class="brand">{{.AppName}}</div></div>
      <div class="hero">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{range .Days}}
          <div class="day"><strong>Day {{.DayNumber}}</strong> · {{.Title}}{{if .AreaFocus}} · {{.AreaFocus}}{{end}}</div>
        {{end}}
        {{if .ButtonURL}}<a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a>{{end}}
      </div>
      <div class="footer">© {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const tripTextTemplate = `{{.Title}}

{{.Intro}}
{{range .Days}}
- Day {{.DayNumber}}: {{.Title}}{{if .AreaFocus}} ({{.AreaFocus}}){{end}}{{end}}

{{if .ButtonURL}}{{.ButtonTxt}}:
{{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data emailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer
	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func buildMessage(from, to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *smtpMailService) deliver(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.UseSSL {
		// implicit TLS, usually port 465
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		}
	}

	if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
		return err
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("UTF-8", name), s.cfg.From)
}

type noopMailService struct {
	log *zap.Logger
}

func (n *noopMailService) SendPreviewReady(_ context.Context, to string, trip TripMail) error {
	n.log.Debug("skipping preview email", zap.String("destination", trip.Destination))
	return nil
}

func (n *noopMailService) SendFullTripReady(_ context.Context, to string, trip TripMail) error {
	n.log.Debug("skipping full trip email", zap.String("destination", trip.Destination))
	return nil
}
