package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"sari_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

const receiptURLDuration = 7 * 24 * time.Hour

// ArchiveReceipt dépose le reçu PDF d'un paiement dans MinIO et renvoie une
// URL signée de téléchargement, valable 7 jours.
func ArchiveReceipt(paymentID string, pdf []byte) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("client MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	key := fmt.Sprintf("receipts/%s.pdf", paymentID)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := database.MinIO.PutObject(ctx, bucket, key,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", err
	}

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, bucket, key, receiptURLDuration, url.Values{})
	if err != nil {
		return "", err
	}

	return presignedURL.String(), nil
}
