package team

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestTeam(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Team Suite")
}

var _ = ginkgo.Describe("Slugify", func() {
	ginkgo.It("lowercases and hyphenates", func() {
		gomega.Expect(Slugify("Platform Team")).To(gomega.Equal("platform-team"))
	})

	ginkgo.It("collapses punctuation runs", func() {
		gomega.Expect(Slugify("QA / Release  &  Ops")).To(gomega.Equal("qa-release-ops"))
	})

	ginkgo.It("trims leading and trailing separators", func() {
		gomega.Expect(Slugify("  #1 Backend!  ")).To(gomega.Equal("1-backend"))
	})

	ginkgo.It("is empty for names with no usable characters", func() {
		gomega.Expect(Slugify("!!!")).To(gomega.BeEmpty())
	})
})
