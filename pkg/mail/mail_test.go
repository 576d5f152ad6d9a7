package mail

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBody(t *testing.T) {
	html, err := RenderBody(BodyData{
		FileName:    "testreport-01092026.pdf",
		FolderName:  "invoices",
		ViewURL:     "https://drive.google.com/file/d/abc123/view",
		DownloadURL: "https://drive.google.com/uc?id=abc123",
		CompanyName: "Amptron Instruments Thailand",
		HasQRCode:   true,
	})
	require.NoError(t, err)

	require.Contains(t, html, "testreport-01092026.pdf")
	require.Contains(t, html, "invoices")
	require.Contains(t, html, "cid:qrcode.png")
	require.Contains(t, html, "cid:logo.png")
	require.Contains(t, html, "https://drive.google.com/file/d/abc123/view")
}

func TestRenderBodyWithoutCodeOrFolder(t *testing.T) {
	html, err := RenderBody(BodyData{
		FileName:    "report.pdf",
		ViewURL:     "https://example.com/view",
		DownloadURL: "https://example.com/dl",
		CompanyName: "Amptron Instruments Thailand",
	})
	require.NoError(t, err)

	require.NotContains(t, html, "cid:qrcode.png")
	require.NotContains(t, html, "in folder")
}

func TestRenderBodyEscapesContent(t *testing.T) {
	html, err := RenderBody(BodyData{
		FileName:    `<script>alert(1)</script>.pdf`,
		ViewURL:     "https://example.com/view",
		DownloadURL: "https://example.com/dl",
		CompanyName: "Amptron",
	})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestBuildMessageEmbedsInlineAssets(t *testing.T) {
	msg := Message{
		Recipient: "customer@example.com",
		Subject:   "Test Report",
		HTML:      `<img src="cid:qrcode.png"/>`,
		Inline: []Asset{
			{Name: "qrcode.png", Data: []byte{0x89, 'P', 'N', 'G'}},
			{Name: "logo.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		},
	}

	m := buildMessage("noreply@amptron.co.th", "Amptron", msg)

	raw := &bytes.Buffer{}
	_, err := m.WriteTo(raw)
	require.NoError(t, err)

	mime := raw.String()
	require.Contains(t, mime, "To: customer@example.com")
	require.Contains(t, mime, "Subject: Test Report")
	require.Contains(t, mime, "qrcode.png")
	require.Contains(t, mime, "logo.png")
	require.True(t, strings.Contains(mime, "multipart/related") || strings.Contains(mime, "multipart/mixed"))
}

func TestDomainOf(t *testing.T) {
	require.Equal(t, "amptron.co.th", domainOf("noreply@amptron.co.th"))
	require.Equal(t, "localhost", domainOf("not-an-address"))
}
