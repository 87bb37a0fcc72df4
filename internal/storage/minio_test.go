package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "b"})
	require.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	s := &MinIOStorage{baseURL: publicBase(config.MinIOConfig{Endpoint: "minio:9000", Bucket: "smart-campus"})}
	assert.Equal(t, "http://minio:9000/smart-campus/lost-items/abc/photo%201.jpg", s.ObjectURL("lost-items/abc/photo 1.jpg"))

	s = &MinIOStorage{baseURL: publicBase(config.MinIOConfig{Endpoint: "s3.example.com", Bucket: "b", UseSSL: true})}
	assert.Equal(t, "https://s3.example.com/b/k.png", s.ObjectURL("k.png"))

	s = &MinIOStorage{baseURL: publicBase(config.MinIOConfig{PublicURL: "https://cdn.example.com/files/", Endpoint: "minio:9000"})}
	assert.Equal(t, "https://cdn.example.com/files/k.png", s.ObjectURL("k.png"))
}

func TestReadPolicy(t *testing.T) {
	var doc struct {
		Statement []struct {
			Action   []string
			Resource []string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(readPolicy("smart-campus")), &doc))
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, []string{"s3:GetObject"}, doc.Statement[0].Action)
	assert.Equal(t, []string{"arn:aws:s3:::smart-campus/lost-items/*"}, doc.Statement[0].Resource)
}
