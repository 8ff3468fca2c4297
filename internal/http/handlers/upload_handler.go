// Invoice upload endpoint.
//
// PUT /upload/{token} is the target of the signed URLs minted by the slot
// issuer. The token authenticates the request and names the object key; no
// other credentials are involved, exactly like a presigned URL. The slot is
// write-once: the first successful PUT consumes it.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ecommerce-backend/internal/storage"
)

// maxUploadBytes caps the accepted invoice document size.
const maxUploadBytes = 1 << 20

// UploadHandler serves the signed upload URLs.
type UploadHandler struct {
	Store *storage.UploadStore
}

// UploadReceipt is the JSON body returned for an accepted upload.
type UploadReceipt struct {
	TransactionID string `json:"transactionId"`
}

// PutInvoice godoc
// @ID          putInvoice
// @Summary     Upload an invoice document
// @Description Accepts the invoice file for a previously issued upload slot.
// @Description The token from the signed URL authenticates the request; each
// @Description slot accepts exactly one upload.
// @Tags        Invoices
// @Accept      json
// @Produce     json
//
// @Param       token  path  string  true  "Signed upload token"
//
// @Success     200  {object}  handlers.UploadReceipt
// @Failure     403  {object}  handlers.ErrorResponse  "Invalid or expired token"
// @Failure     409  {object}  handlers.ErrorResponse  "Slot already used"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /upload/{token} [put]
func (h *UploadHandler) PutInvoice(c *gin.Context) {
	key, err := h.Store.VerifyUploadToken(c.Param("token"))
	if err != nil {
		fail(c, http.StatusForbidden, ErrCodeInvalidUploadToken, "invalid or expired upload token")
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	if err := h.Store.Put(key, body); err != nil {
		if errors.Is(err, storage.ErrSlotUsed) {
			fail(c, http.StatusConflict, ErrCodeSlotUsed, "upload slot already used")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, UploadReceipt{TransactionID: key})
}
