package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	texttmpl "text/template"
)

var (
	textTemplates map[string]*texttmpl.Template
	htmlTemplates map[string]*htmltmpl.Template
	tmplMu        sync.RWMutex
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads all email templates found under templates/email in
// the provided FS. *.txt files become text templates, *.gohtml files HTML templates.
func ParseEmailTemplates(fsys fs.FS, logger Logger) {
	tmplMu.Lock()
	defer tmplMu.Unlock()

	textTemplates = make(map[string]*texttmpl.Template)
	htmlTemplates = make(map[string]*htmltmpl.Template)

	entries, err := fs.ReadDir(fsys, "templates/email")
	if err != nil {
		logger.Error(fmt.Sprintf("reading email templates: %v", err), err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := "templates/email/" + name
		ext := filepath.Ext(name)
		key := strings.TrimSuffix(name, ext)

		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(fsys, path)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", path, err), err)
				continue
			}
			textTemplates[key] = tmpl
		case ".gohtml":
			tmpl, err := htmltmpl.ParseFS(fsys, path)
			if err != nil {
				logger.Error(fmt.Sprintf("parsing email template %s: %v", path, err), err)
				continue
			}
			htmlTemplates[key] = tmpl
		}
	}
}

func (m *EmailMessage) getContextData(conf *Config) ContextData {
	return ContextData{
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) renderText(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplMu.RLock()
	tmpl, ok := textTemplates[m.TemplateName]
	tmplMu.RUnlock()
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.getContextData(conf)); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML(conf *Config) error {
	if m.TemplateName == "" {
		return nil
	}

	tmplMu.RLock()
	tmpl, ok := htmlTemplates[m.TemplateName]
	tmplMu.RUnlock()
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.getContextData(conf)); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) Render(conf *Config) error {
	if err := m.renderText(conf); err != nil {
		return err
	}
	return m.renderHTML(conf)
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}
