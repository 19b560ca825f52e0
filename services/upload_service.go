package services

import (
	"context"
	"io"

	apperrors "catalog/errors"
	"catalog/services/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageUploader đẩy một file ảnh lên kho lưu trữ và trả về URL công khai
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, folder string) *CloudinaryUploader {
	if folder == "" {
		folder = "products"
	}
	return &CloudinaryUploader{cld: cld, folder: folder}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", apperrors.OperationFailed(apperrors.ErrCodeUploadFailed, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type UploadService struct {
	uploader ImageUploader
	logger   logger.Logger
}

func NewUploadService(up ImageUploader, log logger.Logger) *UploadService {
	return &UploadService{uploader: up, logger: log}
}

// UploadAll upload lần lượt; một file lỗi làm hỏng cả request
func (s *UploadService) UploadAll(ctx context.Context, files ...io.Reader) ([]string, error) {
	if s.uploader == nil {
		return nil, apperrors.OperationFailed(apperrors.ErrCodeUploadFailed, "Image upload is not configured")
	}
	if len(files) == 0 {
		return nil, apperrors.Validation(apperrors.ErrCodeMissingFields, "no file uploaded")
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.uploader.Upload(ctx, f)
		if err != nil {
			s.logger.Error("upload image: %v", err)
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.OperationFailed(apperrors.ErrCodeUploadFailed, "Upload failed")
		}
		urls = append(urls, url)
	}
	return urls, nil
}
