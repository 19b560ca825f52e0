package config

import (
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
)

// ConnectCloudinary trả về nil nếu CLOUDINARY_URL không được cấu hình
func ConnectCloudinary(cfg AppConfig) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryURL == "" {
		log.Println("CLOUDINARY_URL not set, upload disabled")
		return nil, nil
	}
	return cloudinary.NewFromURL(cfg.CloudinaryURL)
}
