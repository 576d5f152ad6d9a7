package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amptron-th/testdoc-api/internal/dto"
	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/internal/repository"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/mail"
	"github.com/amptron-th/testdoc-api/pkg/qrcode"
)

// ResultLookup resolves a file name to its retained delivery result.
type ResultLookup interface {
	Lookup(fileName string) (models.DeliveryResult, bool)
}

// EmailService sends QR code notifications and records every attempt, sent or
// failed, in the delivery ledger.
type EmailService struct {
	transport mail.Transport
	ledger    repository.Ledger
	results   ResultLookup
	subject   string
	company   string
	logo      []byte
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEmailService constructs the notification service. logo may be nil; the
// body then renders without the inline brand image.
func NewEmailService(transport mail.Transport, ledger repository.Ledger, results ResultLookup, subject, company string, logo []byte, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = repository.NewMemoryLedger(0)
	}
	return &EmailService{
		transport: transport,
		ledger:    ledger,
		results:   results,
		subject:   subject,
		company:   company,
		logo:      logo,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Notify sends one notification. Every attempt lands in the ledger; a
// transport failure is recorded as failed and returned to the caller.
func (s *EmailService) Notify(ctx context.Context, req dto.SendEmailRequest) (models.EmailRecord, error) {
	rec := models.EmailRecord{
		ID:        strconv.FormatInt(s.now().UnixNano(), 10),
		Recipient: req.RecipientEmail,
		FileName:  req.FileName,
		SentAt:    s.now(),
		Status:    models.EmailStatusSent,
	}

	// Address validation repeats here so bulk and resend items get the same
	// contract as the binding layer. A bad address is still an attempt and
	// lands in the ledger as failed.
	if err := s.validate.Var(req.RecipientEmail, "required,email"); err != nil {
		rec.Status = models.EmailStatusFailed
		rec.Error = "invalid recipient address"
		s.record(ctx, rec)
		return rec, appErrors.Clone(appErrors.ErrValidation, "invalid recipient address")
	}

	result, hasResult := s.results.Lookup(req.FileName)
	if hasResult {
		rec.FileID = result.FileID
	}

	codePNG, err := s.resolveCode(req, result, hasResult)
	if err != nil {
		rec.Status = models.EmailStatusFailed
		rec.Error = appErrors.FromError(err).Message
		s.record(ctx, rec)
		return rec, err
	}

	body, err := mail.RenderBody(mail.BodyData{
		FileName:    req.FileName,
		FolderName:  result.FolderName,
		ViewURL:     result.ViewURL,
		DownloadURL: result.DownloadURL,
		CompanyName: s.company,
		HasQRCode:   len(codePNG) > 0,
	})
	if err != nil {
		rec.Status = models.EmailStatusFailed
		rec.Error = appErrors.FromError(err).Message
		s.record(ctx, rec)
		return rec, err
	}

	msg := mail.Message{
		Recipient: req.RecipientEmail,
		Subject:   s.subject,
		HTML:      body,
	}
	if len(s.logo) > 0 {
		msg.Inline = append(msg.Inline, mail.Asset{Name: "logo.png", Data: s.logo})
	}
	if len(codePNG) > 0 {
		msg.Inline = append(msg.Inline, mail.Asset{Name: "qrcode.png", Data: codePNG})
	}

	messageID, err := s.transport.Send(ctx, msg)
	if err != nil {
		rec.Status = models.EmailStatusFailed
		rec.Error = appErrors.FromError(err).Message
		s.record(ctx, rec)
		return rec, err
	}

	rec.MessageID = messageID
	s.record(ctx, rec)
	return rec, nil
}

// resolveCode picks the request's inline code over the retained one. A send
// with neither fails before the transport is touched.
func (s *EmailService) resolveCode(req dto.SendEmailRequest, result models.DeliveryResult, hasResult bool) ([]byte, error) {
	if req.QRCodeDataURL != "" {
		png, err := qrcode.FromDataURL(req.QRCodeDataURL)
		if err != nil {
			return nil, err
		}
		return png, nil
	}
	if hasResult && result.QRCode != "" {
		return qrcode.FromDataURL(result.QRCode)
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "no stored code for this file")
}

// BulkNotify dispatches one send per stored file concurrently and waits for
// all of them. Failures are counted, never fail-fast.
func (s *EmailService) BulkNotify(ctx context.Context, req dto.BulkSendRequest) dto.BulkSendResponse {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	resp := dto.BulkSendResponse{}

	for _, fileName := range req.FileNames {
		wg.Add(1)
		go func(fileName string) {
			defer wg.Done()
			_, err := s.Notify(ctx, dto.SendEmailRequest{
				RecipientEmail: req.RecipientEmail,
				FileName:       fileName,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Failed++
				resp.Errors = append(resp.Errors, fileName+": "+appErrors.FromError(err).Message)
			} else {
				resp.Sent++
			}
		}(fileName)
	}
	wg.Wait()

	s.logger.Info("bulk notification finished",
		zap.String("recipient", req.RecipientEmail),
		zap.Int("sent", resp.Sent),
		zap.Int("failed", resp.Failed))
	return resp
}

// Resend retries a batch of previously failed notifications sequentially,
// preserving the batch order in the ledger.
func (s *EmailService) Resend(ctx context.Context, req dto.ResendRequest) dto.BulkSendResponse {
	resp := dto.BulkSendResponse{}
	for _, item := range req.Items {
		if _, err := s.Notify(ctx, dto.SendEmailRequest{
			RecipientEmail: item.RecipientEmail,
			FileName:       item.FileName,
		}); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, item.RecipientEmail+": "+appErrors.FromError(err).Message)
		} else {
			resp.Sent++
		}
	}
	return resp
}

// History pages through the delivery ledger, most recent first.
func (s *EmailService) History(ctx context.Context, limit, offset int) ([]models.EmailRecord, int, error) {
	return s.ledger.List(ctx, limit, offset)
}

func (s *EmailService) record(ctx context.Context, rec models.EmailRecord) {
	if err := s.ledger.Record(ctx, rec); err != nil {
		s.logger.Error("ledger write failed", zap.String("record_id", rec.ID), zap.Error(err))
	}
}
