package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"rfp-backend/database"
	"rfp-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Idempotency processes the Idempotency-Key header for mutating HTTP
// methods. The first completed response for a key is stored and replayed for
// retries; reusing a key with a different request is rejected.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		path := c.OriginalURL() // includes query string
		body := c.Body()

		// Deterministic request hash: method|path|body
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(path))
		h.Write([]byte{'\n'})
		h.Write(body)
		reqHash := hex.EncodeToString(h.Sum(nil))

		// ---- Phase 1: read/create "pending" under a short TX
		var existing models.IdempotencyKey
		replayed := false
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("key = ?", key).First(&existing).Error; err != nil {
				if err != gorm.ErrRecordNotFound {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
				}
				rec := models.IdempotencyKey{
					Key:            key,
					RequestHash:    reqHash,
					Method:         method,
					Path:           path,
					ResponseStatus: 0,
				}
				if e2 := tx.Create(&rec).Error; e2 != nil {
					// Could be unique race: read again
					if e3 := tx.Where("key = ?", key).First(&existing).Error; e3 != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
					}
				} else {
					existing = rec
				}
			}

			if existing.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
				// Completed response on file: replay it, skip the handler
				replayed = true
				c.Status(existing.ResponseStatus)
				return c.Send(existing.ResponseBody)
			}

			// Pending/in-progress: let the request run
			return nil
		})
		if err != nil {
			return err
		}
		if replayed {
			return nil
		}

		if err := c.Next(); err != nil {
			return err
		}

		// ---- Phase 2: store the response (best-effort)
		_ = database.DB.Transaction(func(tx *gorm.DB) error {
			now := time.Now().UTC()
			status := c.Response().StatusCode()
			resp := c.Response().Body()
			blob := make([]byte, len(resp))
			copy(blob, resp)

			return tx.Model(&models.IdempotencyKey{}).
				Where("key = ?", key).
				Updates(map[string]any{
					"response_status": status,
					"response_body":   blob,
					"completed_at":    &now,
				}).Error
		})

		return nil
	}
}
