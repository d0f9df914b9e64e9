package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"dermo-chatbot-platform/internal/config"
)

type EmailSender interface {
	SendTranscript(sessionID, transcript string) error
}

type SMTPEmailSender struct {
	config config.Config
}

func NewSMTPEmailSender(cfg config.Config) *SMTPEmailSender {
	return &SMTPEmailSender{config: cfg}
}

// SendTranscript mails a chat transcript to the configured admin addresses.
// The subject carries the date so daily exports sort naturally in a mailbox.
func (s *SMTPEmailSender) SendTranscript(sessionID, transcript string) error {
	recipients := []string{}
	for _, adminEmail := range s.config.AdminEmails {
		if strings.TrimSpace(adminEmail) != "" {
			recipients = append(recipients, strings.TrimSpace(adminEmail))
		}
	}

	if len(recipients) == 0 {
		return fmt.Errorf("no admin recipients configured")
	}

	subject := "Chat Q&A: " + time.Now().Format("2006-01-02")
	htmlBody, textBody, err := s.generateTranscriptContent(sessionID, transcript)
	if err != nil {
		return fmt.Errorf("failed to generate email content: %w", err)
	}

	return s.sendEmail(recipients, subject, htmlBody, textBody)
}

type transcriptData struct {
	SessionID  string
	Transcript string
}

func (s *SMTPEmailSender) generateTranscriptContent(sessionID, transcript string) (htmlBody, textBody string, err error) {
	htmlT, _ := template.New("html").Parse(transcriptHTMLTemplate)
	textT, _ := template.New("text").Parse(transcriptTextTemplate)

	data := transcriptData{SessionID: sessionID, Transcript: transcript}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlT.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	if err := textT.Execute(&textBuf, data); err != nil {
		return "", "", err
	}

	return htmlBuf.String(), textBuf.String(), nil
}

func (s *SMTPEmailSender) sendEmail(recipients []string, subject, htmlBody, textBody string) error {
	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPass, s.config.SMTPHost)

	message := fmt.Sprintf(`From: %s
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="boundary123"

--boundary123
Content-Type: text/plain; charset=UTF-8

%s

--boundary123
Content-Type: text/html; charset=UTF-8

%s

--boundary123--`,
		s.config.SMTPFrom,
		strings.Join(recipients, ", "),
		subject,
		textBody,
		htmlBody)

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.SMTPFrom, recipients, []byte(message))
}

const transcriptHTMLTemplate = `<html><body>
<h2>Conversación con el asistente</h2>
<p>Sesión: <strong>{{.SessionID}}</strong></p>
<pre>{{.Transcript}}</pre>
</body></html>`

const transcriptTextTemplate = `Conversación con el asistente

Sesión: {{.SessionID}}

{{.Transcript}}`
