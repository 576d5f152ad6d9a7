package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AITESTDOC API",
        "description": "Document consolidation, QR code generation and delivery",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Uploads", "description": "Document upload and consolidation"},
        {"name": "Notifications", "description": "QR code email delivery"},
        {"name": "Auth", "description": "Remote store authorization"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload documents and generate QR codes",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "files", "in": "formData", "required": true, "type": "file"},
                    {"name": "uploadMode", "in": "formData", "type": "string", "enum": ["individual", "combined"]},
                    {"name": "folderName", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Store authorization required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Unsupported file type", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/send-email": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Email a QR code to one recipient",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Transport failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/send-email/bulk": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Email a QR code to several recipients",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkSendRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/send-email/resend": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Retry previously failed notifications",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResendRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/email-history": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Page through the delivery ledger",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 50},
                    {"name": "offset", "in": "query", "type": "integer", "default": 0}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth-status": {
            "get": {
                "tags": ["Auth"],
                "summary": "Report store authorization state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/oauth/callback": {
            "get": {
                "tags": ["Auth"],
                "summary": "OAuth redirect target completing authorization",
                "parameters": [
                    {"name": "code", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SendEmailRequest": {
            "type": "object",
            "required": ["recipientEmail", "fileName"],
            "properties": {
                "recipientEmail": {"type": "string"},
                "fileName": {"type": "string"},
                "qrCodeDataUrl": {"type": "string"}
            }
        },
        "BulkSendRequest": {
            "type": "object",
            "required": ["recipientEmail", "fileNames"],
            "properties": {
                "recipientEmail": {"type": "string"},
                "fileNames": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResendItem": {
            "type": "object",
            "required": ["recipientEmail", "fileName"],
            "properties": {
                "recipientEmail": {"type": "string"},
                "fileName": {"type": "string"}
            }
        },
        "ResendRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/ResendItem"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
