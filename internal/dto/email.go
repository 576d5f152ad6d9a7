package dto

// SendEmailRequest asks for one QR code notification. QRCodeDataURL is
// optional; when absent the code stored for the file during upload is used.
type SendEmailRequest struct {
	RecipientEmail string `json:"recipientEmail" binding:"required,email"`
	FileName       string `json:"fileName" binding:"required"`
	QRCodeDataURL  string `json:"qrCodeDataUrl"`
}

// BulkSendRequest fans notifications for several stored files out to one
// recipient. Address validation happens per send so one bad item cannot
// reject the whole batch.
type BulkSendRequest struct {
	RecipientEmail string   `json:"recipientEmail" binding:"required"`
	FileNames      []string `json:"fileNames" binding:"required,min=1"`
}

// BulkSendResponse summarizes a fan-out.
type BulkSendResponse struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// ResendItem names one notification to retry.
type ResendItem struct {
	RecipientEmail string `json:"recipientEmail" binding:"required"`
	FileName       string `json:"fileName" binding:"required"`
}

// ResendRequest retries a batch of previously failed notifications. Items are
// validated individually during processing, not at the binding layer.
type ResendRequest struct {
	Items []ResendItem `json:"items" binding:"required,min=1,dive"`
}

// HistoryQuery pages through the delivery ledger.
type HistoryQuery struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}
