package notify

import (
	"errors"
	"strings"
	"testing"

	"certtriage/internal/config"

	gomail "gopkg.in/gomail.v2"
)

func TestRenderMessage_RegularPass(t *testing.T) {
	subject, body, err := renderMessage("regular", "bad.pem", []string{"certificate has expired"}, "run-1")
	if err != nil {
		t.Fatalf("renderMessage: %v", err)
	}
	if !strings.Contains(subject, "bad.pem") {
		t.Errorf("subject %q missing file name", subject)
	}
	if strings.Contains(subject, "intake") {
		t.Errorf("regular-pass subject %q uses the intake wording", subject)
	}
	for _, want := range []string{"bad.pem", "certificate has expired", "run-1", "failed revalidation"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderMessage_InitialPassUsesDistinctTemplate(t *testing.T) {
	regSubject, regBody, err := renderMessage("regular", "bad.pem", []string{"certificate has been revoked"}, "run-1")
	if err != nil {
		t.Fatalf("renderMessage: %v", err)
	}
	initSubject, initBody, err := renderMessage("initial", "bad.pem", []string{"certificate has been revoked"}, "run-1")
	if err != nil {
		t.Fatalf("renderMessage: %v", err)
	}
	if regSubject == initSubject {
		t.Errorf("passes share subject %q, want distinct subjects", regSubject)
	}
	if regBody == initBody {
		t.Error("passes share message body, want distinct lead text")
	}
	if !strings.Contains(initSubject, "intake") {
		t.Errorf("initial-pass subject %q missing intake wording", initSubject)
	}
}

func TestRenderMessage_ListsEveryReason(t *testing.T) {
	reasons := []string{
		"certificate is not trusted by a qualified trust service provider",
		"certificate signature is not valid",
		"certificate has been revoked",
		"certificate has expired",
	}
	_, body, err := renderMessage("initial", "bad.pem", reasons, "run-1")
	if err != nil {
		t.Fatalf("renderMessage: %v", err)
	}
	if got := strings.Count(body, "<li>"); got != len(reasons) {
		t.Errorf("body lists %d reasons, want %d", got, len(reasons))
	}
}

func TestNotifyInvalid_SendsOneMessage(t *testing.T) {
	var sent []*gomail.Message
	m := NewMailer(config.Mail{
		Host:      "mail.example.com",
		Port:      587,
		From:      "certs@example.com",
		Recipient: "operator@example.com",
	})
	m.send = func(msg *gomail.Message) error {
		sent = append(sent, msg)
		return nil
	}

	if err := m.NotifyInvalid("initial", "bad.pem", []string{"certificate has expired"}, "run-1"); err != nil {
		t.Fatalf("NotifyInvalid: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}

	msg := sent[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "operator@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := msg.GetHeader("From"); len(got) != 1 || got[0] != "certs@example.com" {
		t.Errorf("From = %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "bad.pem") {
		t.Errorf("Subject = %v", got)
	}
}

func TestNotifyInvalid_PropagatesSendFailure(t *testing.T) {
	m := NewMailer(config.Mail{Host: "mail.example.com", Port: 587, From: "a@b", Recipient: "c@d"})
	m.send = func(msg *gomail.Message) error {
		return errors.New("dial tcp: connection refused")
	}

	err := m.NotifyInvalid("regular", "bad.pem", []string{"certificate has expired"}, "run-1")
	if err == nil {
		t.Fatal("NotifyInvalid: expected error")
	}
	if !strings.Contains(err.Error(), "bad.pem") {
		t.Errorf("error %q missing file name", err)
	}
}
