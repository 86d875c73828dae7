package password

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/pbkdf2"
)

func TestPassword(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Password Suite")
}

// legacyHash builds a stored hash in the old pbkdf2_sha256 format.
func legacyHash(plaintext, salt string, iterations int) string {
	dk := pbkdf2.Key([]byte(plaintext), []byte(salt), iterations, 32, sha256.New)
	return fmt.Sprintf("pbkdf2_sha256$%d$%s$%s", iterations, salt, base64.StdEncoding.EncodeToString(dk))
}

var _ = ginkgo.Describe("Hasher", func() {
	var hasher *Hasher

	ginkgo.BeforeEach(func() {
		// low cost keeps the suite fast; Verify behavior is cost-independent
		hasher = NewHasher(4)
	})

	ginkgo.Describe("Hash", func() {
		ginkgo.It("produces a bcrypt hash that verifies without upgrade", func() {
			stored, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(strings.HasPrefix(stored, "$2")).To(gomega.BeTrue())

			matched, needsUpgrade := hasher.Verify("longenough1", stored)
			gomega.Expect(matched).To(gomega.BeTrue())
			gomega.Expect(needsUpgrade).To(gomega.BeFalse())
		})

		ginkgo.It("rejects the wrong password", func() {
			stored, err := hasher.Hash("longenough1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			matched, needsUpgrade := hasher.Verify("longenough2", stored)
			gomega.Expect(matched).To(gomega.BeFalse())
			gomega.Expect(needsUpgrade).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("Verify with legacy hashes", func() {
		ginkgo.It("matches a valid legacy hash and flags it for upgrade", func() {
			stored := legacyHash("candidate_password", "DX3I0ec38XsR4oEPaaDff1", 1000)

			matched, needsUpgrade := hasher.Verify("candidate_password", stored)
			gomega.Expect(matched).To(gomega.BeTrue())
			gomega.Expect(needsUpgrade).To(gomega.BeTrue())
		})

		ginkgo.It("re-hashed plaintext verifies canonically afterwards", func() {
			stored := legacyHash("candidate_password", "somesalt", 1000)

			matched, needsUpgrade := hasher.Verify("candidate_password", stored)
			gomega.Expect(matched).To(gomega.BeTrue())
			gomega.Expect(needsUpgrade).To(gomega.BeTrue())

			upgraded, err := hasher.Hash("candidate_password")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			matched, needsUpgrade = hasher.Verify("candidate_password", upgraded)
			gomega.Expect(matched).To(gomega.BeTrue())
			gomega.Expect(needsUpgrade).To(gomega.BeFalse())
		})

		ginkgo.It("does not flag an upgrade on a failed legacy match", func() {
			stored := legacyHash("correct_password", "somesalt", 1000)

			matched, needsUpgrade := hasher.Verify("wrong_password", stored)
			gomega.Expect(matched).To(gomega.BeFalse())
			gomega.Expect(needsUpgrade).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("Verify with malformed stored data", func() {
		ginkgo.It("never matches on empty or garbage hashes", func() {
			for _, stored := range []string{
				"",
				"not-a-hash",
				"pbkdf2_sha256$",
				"pbkdf2_sha256$abc$salt$key",
				"pbkdf2_sha256$1000$$key",
				"pbkdf2_sha256$1000$salt$!!!not-base64!!!",
			} {
				matched, _ := hasher.Verify("anything", stored)
				gomega.Expect(matched).To(gomega.BeFalse(), "stored=%q", stored)
			}
		})
	})

	ginkgo.Describe("ValidateNew", func() {
		ginkgo.It("rejects passwords shorter than 8 characters", func() {
			gomega.Expect(ValidateNew("short1")).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects passwords without a number", func() {
			gomega.Expect(ValidateNew("longenough")).To(gomega.HaveOccurred())
		})

		ginkgo.It("accepts a compliant password", func() {
			gomega.Expect(ValidateNew("longenough1")).ToNot(gomega.HaveOccurred())
		})
	})
})

var _ = ginkgo.Describe("Prefix", func() {
	ginkgo.It("truncates long hashes for diagnostics", func() {
		gomega.Expect(Prefix("$2b$12$abcdefghijklmnopqrstuv")).To(gomega.Equal("$2b$12$abc"))
	})
})
