// Package mail delivers QR code notifications over SMTP or Amazon SES.
package mail

import (
	"bytes"
	"context"
	"html/template"

	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// Asset is an inline attachment referenced from the HTML body by cid.
type Asset struct {
	Name string
	Data []byte
}

// Message is one outbound notification.
type Message struct {
	Recipient string
	Subject   string
	HTML      string
	Inline    []Asset
}

// Transport sends a message and returns the provider message identifier.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// BodyData feeds the notification template.
type BodyData struct {
	FileName    string
	FolderName  string
	ViewURL     string
	DownloadURL string
	CompanyName string
	HasQRCode   bool
}

// Fixed product copy. The cid references must match the inline asset names
// used by the transports.
var bodyTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 24px;">
    <img src="cid:logo.png" alt="{{.CompanyName}}" style="height: 48px; margin-bottom: 16px;"/>
    <h2 style="color: #1a5276;">Your document is ready</h2>
    <p>The document <strong>{{.FileName}}</strong>{{if .FolderName}} in folder <strong>{{.FolderName}}</strong>{{end}} has been uploaded.</p>
{{if .HasQRCode}}    <p>Scan the code below to open it:</p>
    <img src="cid:qrcode.png" alt="QR code" style="width: 300px; height: 300px;"/>
{{end}}    <p>
      <a href="{{.ViewURL}}" style="color: #1a5276;">View document</a>
      &nbsp;|&nbsp;
      <a href="{{.DownloadURL}}" style="color: #1a5276;">Download</a>
    </p>
    <hr style="border: none; border-top: 1px solid #ddd;"/>
    <p style="font-size: 12px; color: #888;">{{.CompanyName}}</p>
  </div>
</body>
</html>
`))

// RenderBody produces the notification HTML for a delivery.
func RenderBody(data BodyData) (string, error) {
	buf := &bytes.Buffer{}
	if err := bodyTemplate.Execute(buf, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render notification body")
	}
	return buf.String(), nil
}
