package storage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/stopwork/internal/storage"
)

func TestEvidenceKey(t *testing.T) {
	key := storage.EvidenceKey("ev-1", `C:\photos\guard.jpg`)
	assert.True(t, strings.HasPrefix(key, "evidence/ev-1/"), key)
	assert.True(t, strings.HasSuffix(key, "-guard.jpg"), key)

	assert.NotEqual(t, key, storage.EvidenceKey("ev-1", `C:\photos\guard.jpg`))
}

func TestEvidenceKey_StripsTraversal(t *testing.T) {
	key := storage.EvidenceKey("ev-1", "../../etc/passwd")
	assert.True(t, strings.HasSuffix(key, "-passwd"), key)
	assert.NotContains(t, key, "..")
}

func TestEvidenceKey_EmptyName(t *testing.T) {
	assert.True(t, strings.HasSuffix(storage.EvidenceKey("ev-1", ""), "-upload"))
}

func TestFileRef(t *testing.T) {
	assert.Equal(t, "s3://bucket/evidence/a", storage.FileRef("bucket", "evidence/a"))
}
