package mail

import (
	"bytes"
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// SESTransport sends notifications through Amazon SES. Messages are built as
// raw MIME so inline cid assets survive the trip.
type SESTransport struct {
	client   *sesv2.Client
	from     string
	fromName string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSESTransport constructs an SES transport. Static credentials take
// priority; otherwise the default AWS chain applies.
func NewSESTransport(ctx context.Context, cfg config.MailConfig, logger *zap.Logger) (*SESTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SES.Region),
	}
	if cfg.SES.AccessKey != "" && cfg.SES.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SES.AccessKey, cfg.SES.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransportFailure.Code, appErrors.ErrTransportFailure.Status, "load aws configuration")
	}

	return &SESTransport{
		client:   sesv2.NewFromConfig(awsCfg),
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Send delivers one message and returns the SES message identifier.
func (t *SESTransport) Send(ctx context.Context, msg Message) (string, error) {
	raw := &bytes.Buffer{}
	if _, err := buildMessage(t.from, t.fromName, msg).WriteTo(raw); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "serialize message")
	}

	timeout := t.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw.Bytes()},
		},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTransportFailure.Code, appErrors.ErrTransportFailure.Status, "ses send failed")
	}

	id := ""
	if out.MessageId != nil {
		id = *out.MessageId
	}
	t.logger.Info("notification sent",
		zap.String("recipient", msg.Recipient),
		zap.String("message_id", id))
	return id, nil
}
