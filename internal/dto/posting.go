// Package dto defines the request and response shapes of the HTTP surface.
package dto

import (
	"github.com/glsuite/gl_posting_app/internal/apperrors"
	"github.com/glsuite/gl_posting_app/internal/core/domain"
)

// PostingRequestURI identifies the document to post.
type PostingRequestURI struct {
	TableName string `uri:"table" binding:"required,tablename"`
	RecordID  int64  `uri:"recordID" binding:"required,gt=0"`
}

// PostingRequestQuery carries the posting flags.
type PostingRequestQuery struct {
	// Force bypasses the already-locked check; for recovering documents left
	// mid-posting by a crashed poster.
	Force bool `form:"force"`

	// Repost bypasses the already-posted check and replaces prior facts.
	Repost bool `form:"repost"`
}

// PostingResponse reports the posting outcome for a document.
type PostingResponse struct {
	TableName    string `json:"tableName"`
	RecordID     int64  `json:"recordID"`
	PostedStatus string `json:"postedStatus"`
	Error        string `json:"error,omitempty"`
}

// NewPostingResponse builds the response for a posting outcome; perr nil
// means the document posted.
func NewPostingResponse(ref domain.TableRecordRef, perr *apperrors.PostingError) PostingResponse {
	resp := PostingResponse{
		TableName:    ref.TableName,
		RecordID:     ref.RecordID,
		PostedStatus: string(domain.PostingStatusPosted),
	}
	if perr != nil {
		resp.PostedStatus = string(perr.StatusOrError())
		resp.Error = perr.Error()
	}
	return resp
}
