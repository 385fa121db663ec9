package platform

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	artifactExt     = ".yaml"
	artifactSaltMin = 10000
	artifactSaltMax = 90000
)

func NewID() string {
	return uuid.New().String()
}

// NewArtifactKey derives a storage key for a rendered template from the
// current time and a random salt in [10000, 90000].
func NewArtifactKey() string {
	return ArtifactKey(time.Now(), artifactSaltMin+rand.IntN(artifactSaltMax-artifactSaltMin+1))
}

// ArtifactKey is the hex SHA-256 of the timestamp concatenated with salt,
// plus the .yaml extension.
func ArtifactKey(now time.Time, salt int) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(now.UnixNano(), 10) + strconv.Itoa(salt)))
	return hex.EncodeToString(sum[:]) + artifactExt
}
