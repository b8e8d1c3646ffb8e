package entities

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Book is a catalog title together with its copy inventory.
// CopiesAvailable is only ever changed by the inventory coordinator.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:255;not null" json:"title"`
	Author          string    `gorm:"index;size:255;not null" json:"author"`
	ISBN            *string   `gorm:"size:32" json:"isbn"`
	CopiesTotal     int       `gorm:"not null;default:1" json:"copies_total"`
	CopiesAvailable int       `gorm:"not null;default:1" json:"copies_available"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// CanBorrow reports whether at least one copy is on the shelf.
func (b *Book) CanBorrow() bool {
	return b.CopiesAvailable > 0
}

// ISBNValue returns the ISBN or an empty string.
func (b *Book) ISBNValue() string {
	if b.ISBN == nil {
		return ""
	}
	return *b.ISBN
}

// Validate checks the field rules and the 0 <= available <= total invariant.
func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Title,
			validation.By(notBlank("title is required")),
			validation.RuneLength(0, 255),
		),
		validation.Field(&b.Author,
			validation.By(notBlank("author is required")),
			validation.RuneLength(0, 255),
		),
		validation.Field(&b.ISBN, validation.NilOrNotEmpty, validation.RuneLength(0, 32)),
		validation.Field(&b.CopiesTotal,
			validation.Min(1).Error("copies_total must be at least 1"),
		),
		validation.Field(&b.CopiesAvailable,
			validation.Min(0).Error("copies_available cannot be negative"),
			validation.Max(b.CopiesTotal).Error("copies_available cannot exceed copies_total"),
		),
	)
}

// NormalizeISBN trims the value and maps blanks to nil.
func NormalizeISBN(isbn string) *string {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil
	}
	return &isbn
}

// notBlank rejects strings that are empty after trimming. validation.Required
// accepts whitespace-only input, which is not a usable title or name.
func notBlank(message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_blank", message)
		}
		return nil
	}
}
