package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amptron-th/testdoc-api/internal/dto"
	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/internal/repository"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/mail"
	"github.com/amptron-th/testdoc-api/pkg/qrcode"
)

type stubTransport struct {
	mu    sync.Mutex
	sent  []mail.Message
	err   error
	msgID string
}

func (t *stubTransport) Send(_ context.Context, msg mail.Message) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return "", t.err
	}
	t.sent = append(t.sent, msg)
	if t.msgID != "" {
		return t.msgID, nil
	}
	return "msg-1", nil
}

func (t *stubTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

type stubLookup struct {
	results map[string]models.DeliveryResult
}

func (s *stubLookup) Lookup(fileName string) (models.DeliveryResult, bool) {
	res, ok := s.results[fileName]
	return res, ok
}

func deliveredResult() models.DeliveryResult {
	return models.DeliveryResult{
		FileName:    "report.pdf",
		FileID:      "drive-42",
		ViewURL:     "https://drive.google.com/file/d/drive-42/view",
		DownloadURL: "https://drive.google.com/uc?id=drive-42",
		QRCode:      qrcode.DataURL([]byte{0x89, 'P', 'N', 'G'}),
		Kind:        models.ArtifactKindIndividual,
		FolderName:  "invoices",
	}
}

func newEmailFixture(transport *stubTransport) (*EmailService, *repository.MemoryLedger) {
	ledger := repository.NewMemoryLedger(100)
	lookup := &stubLookup{results: map[string]models.DeliveryResult{"report.pdf": deliveredResult()}}
	svc := NewEmailService(transport, ledger, lookup, "Test Report", "Amptron", []byte{0x89, 'P', 'N', 'G'}, nil)
	return svc, ledger
}

func TestNotifySendsAndRecords(t *testing.T) {
	transport := &stubTransport{msgID: "ses-123"}
	svc, ledger := newEmailFixture(transport)

	rec, err := svc.Notify(context.Background(), dto.SendEmailRequest{
		RecipientEmail: "customer@example.com",
		FileName:       "report.pdf",
	})
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusSent, rec.Status)
	require.Equal(t, "ses-123", rec.MessageID)
	require.Equal(t, "drive-42", rec.FileID)

	require.Equal(t, 1, transport.count())
	msg := transport.sent[0]
	require.Equal(t, "customer@example.com", msg.Recipient)
	require.Equal(t, "Test Report", msg.Subject)
	require.Len(t, msg.Inline, 2)

	history, total, err := ledger.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, models.EmailStatusSent, history[0].Status)
}

func TestNotifyPrefersInlineCode(t *testing.T) {
	transport := &stubTransport{}
	svc, _ := newEmailFixture(transport)

	inline := qrcode.DataURL([]byte{1, 2, 3})
	_, err := svc.Notify(context.Background(), dto.SendEmailRequest{
		RecipientEmail: "customer@example.com",
		FileName:       "report.pdf",
		QRCodeDataURL:  inline,
	})
	require.NoError(t, err)

	var code []byte
	for _, asset := range transport.sent[0].Inline {
		if asset.Name == "qrcode.png" {
			code = asset.Data
		}
	}
	require.Equal(t, []byte{1, 2, 3}, code)
}

func TestNotifyRecordsInvalidAddressAsFailed(t *testing.T) {
	transport := &stubTransport{}
	svc, ledger := newEmailFixture(transport)

	rec, err := svc.Notify(context.Background(), dto.SendEmailRequest{
		RecipientEmail: "not an address",
		FileName:       "report.pdf",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Equal(t, models.EmailStatusFailed, rec.Status)
	require.Zero(t, transport.count())

	history, total, err := ledger.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, models.EmailStatusFailed, history[0].Status)
	require.Contains(t, history[0].Error, "invalid recipient address")
}

func TestNotifyFailsWithoutAnyCode(t *testing.T) {
	transport := &stubTransport{}
	ledger := repository.NewMemoryLedger(100)
	lookup := &stubLookup{results: map[string]models.DeliveryResult{}}
	svc := NewEmailService(transport, ledger, lookup, "Test Report", "Amptron", nil, nil)

	rec, err := svc.Notify(context.Background(), dto.SendEmailRequest{
		RecipientEmail: "customer@example.com",
		FileName:       "unknown.pdf",
	})
	require.Error(t, err)
	require.Equal(t, models.EmailStatusFailed, rec.Status)
	require.Contains(t, rec.Error, "no stored code")
	require.Zero(t, transport.count())

	history, total, err := ledger.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, models.EmailStatusFailed, history[0].Status)
}

func TestNotifyRecordsTransportFailure(t *testing.T) {
	transport := &stubTransport{err: appErrors.Clone(appErrors.ErrTransportFailure, "smtp send timed out")}
	svc, ledger := newEmailFixture(transport)

	rec, err := svc.Notify(context.Background(), dto.SendEmailRequest{
		RecipientEmail: "customer@example.com",
		FileName:       "report.pdf",
	})
	require.Error(t, err)
	require.Equal(t, models.EmailStatusFailed, rec.Status)
	require.Contains(t, rec.Error, "smtp send timed out")

	history, _, err := ledger.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusFailed, history[0].Status)
}

func TestBulkNotifyCountsOutcomes(t *testing.T) {
	transport := &stubTransport{}
	ledger := repository.NewMemoryLedger(100)
	lookup := &stubLookup{results: map[string]models.DeliveryResult{
		"report.pdf": deliveredResult(),
		"scan.png":   deliveredResult(),
	}}
	svc := NewEmailService(transport, ledger, lookup, "Test Report", "Amptron", nil, nil)

	resp := svc.BulkNotify(context.Background(), dto.BulkSendRequest{
		RecipientEmail: "customer@example.com",
		FileNames:      []string{"report.pdf", "scan.png", "never-uploaded.pdf"},
	})
	require.Equal(t, 2, resp.Sent)
	require.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0], "never-uploaded.pdf")
	require.Equal(t, 2, transport.count())

	// Every attempt lands in the ledger, failed ones included.
	_, total, err := ledger.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
}

func TestResendReportsPerItemFailures(t *testing.T) {
	transport := &stubTransport{}
	svc, _ := newEmailFixture(transport)

	resp := svc.Resend(context.Background(), dto.ResendRequest{Items: []dto.ResendItem{
		{RecipientEmail: "a@example.com", FileName: "report.pdf"},
		{RecipientEmail: "b@example.com", FileName: "never-uploaded.pdf"},
	}})
	require.Equal(t, 1, resp.Sent)
	require.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0], "b@example.com")
	require.Equal(t, 1, transport.count())
}

func TestHistoryPagesThroughLedger(t *testing.T) {
	transport := &stubTransport{}
	svc, _ := newEmailFixture(transport)

	for i := 0; i < 5; i++ {
		_, err := svc.Notify(context.Background(), dto.SendEmailRequest{
			RecipientEmail: "customer@example.com",
			FileName:       "report.pdf",
		})
		require.NoError(t, err)
	}

	records, total, err := svc.History(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, records, 2)
}
