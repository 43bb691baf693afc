package cloudinary

import (
	"github.com/cloudinary/cloudinary-go/v2"
)

// New builds a client from a cloudinary:// URL, or from CLOUDINARY_URL when url is empty.
func New(url string) (*cloudinary.Cloudinary, error) {
	if url != "" {
		return cloudinary.NewFromURL(url)
	}
	return cloudinary.New()
}
