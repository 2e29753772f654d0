package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// UploadedFile fichier multipart dont le type est détecté sur le contenu
// et non sur l'en-tête envoyé par le client
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
	file        multipart.File
}

func (f *UploadedFile) Close() error {
	return f.file.Close()
}

// FormFile nil, nil si le champ est absent
func FormFile(c *gin.Context, field string) (*UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("lecture du champ %s: %w", field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("ouverture du fichier %s: %w", header.Filename, err)
	}

	reader := bufio.NewReaderSize(file, sniffLen)
	head, _ := reader.Peek(sniffLen)

	return &UploadedFile{
		Filename:    header.Filename,
		ContentType: contentType(head),
		Size:        header.Size,
		Content:     reader,
		file:        file,
	}, nil
}

// sniffLen octets lus par mimetype pour la détection
const sniffLen = 3072

func contentType(head []byte) string {
	mt, _, _ := strings.Cut(mimetype.Detect(head).String(), ";")
	return strings.TrimSpace(mt)
}
