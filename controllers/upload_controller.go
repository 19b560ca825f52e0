package controllers

import (
	"io"
	"mime/multipart"

	apperrors "catalog/errors"
	"catalog/response"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Service *services.UploadService
}

func NewUploadController(svc *services.UploadService) UploadController {
	return UploadController{Service: svc}
}

// UploadImage nhận một file ở field "file"
func (u UploadController) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, apperrors.ErrCodeMissingFields, "No file uploaded")
		return
	}
	urls, ok := u.upload(c, []*multipart.FileHeader{file})
	if !ok {
		return
	}
	response.Success(c, "Upload image successfully", gin.H{"url": urls[0]})
}

// UploadImages nhận nhiều file ở field "files"
func (u UploadController) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.BadRequest(c, apperrors.ErrCodeMissingFields, "No file uploaded")
		return
	}
	urls, ok := u.upload(c, form.File["files"])
	if !ok {
		return
	}
	response.Success(c, "Upload images successfully", gin.H{"urls": urls})
}

func (u UploadController) upload(c *gin.Context, headers []*multipart.FileHeader) ([]string, bool) {
	readers := make([]io.Reader, 0, len(headers))
	for _, h := range headers {
		src, err := h.Open()
		if err != nil {
			response.BadRequest(c, apperrors.ErrCodeUploadFailed, "Cannot open uploaded file")
			return nil, false
		}
		defer src.Close()
		readers = append(readers, src)
	}
	urls, err := u.Service.UploadAll(c.Request.Context(), readers...)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return urls, true
}
