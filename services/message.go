package services

import (
	"fmt"

	"AutoPostAPI/models"
)

// RenderMessage builds the plain-text Facebook message for a post.
// Prices always render with two decimals ("Price: $50.00").
func RenderMessage(post *models.Post) string {
	return fmt.Sprintf("%s\n\n%s\n\nPrice: $%.2f\nLocation: %s",
		post.Title, post.Description, post.Price, post.Location)
}
