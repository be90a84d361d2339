package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderCode produces a unique human-readable order code, e.g.
// ORD-20260831-7KQ2M. Uniqueness is check-then-insert with a bounded
// retry; fine at store-counter write rates, not collision-free under
// heavy concurrency.
func GenerateOrderCode(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := make([]byte, 5)
		for i := range suffix {
			suffix[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)

		var count int64
		if err := db.Model(&models.Order{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique order code")
}

// randAlnum backs the synthetic walk-in phone placeholder.
func randAlnum(n int) string {
	const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alnum[rand.Intn(len(alnum))]
	}
	return string(b)
}
