package orbit

import (
	"bytes"
	"math"

	kitlog "github.com/go-kit/kit/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ = Describe("Follower", func() {
	var (
		path   *Path
		follow *Follower
		logs   *bytes.Buffer
		period float64
	)

	BeforeEach(func() {
		var err error
		path, err = NewPath(Config{
			SemiMajorAxis:        10,
			Eccentricity:         0.5,
			ArgumentOfPeriapsis:  0.3,
			Gravity:              100,
			GravityDistanceScale: 1,
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		logs = &bytes.Buffer{}
		follow = NewFollower(path, kitlog.NewLogfmtLogger(logs))
		period, err = path.Elements().Period()
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts at periapsis", func() {
		sv, err := follow.Advance(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(sv.Distance()).To(BeNumerically("~", 5, 1e-9))
	})

	It("reaches apoapsis after half a period", func() {
		sv, err := follow.Advance(period / 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(sv.Distance()).To(BeNumerically("~", 15, 1e-9))
	})

	It("wraps the clock at the period", func() {
		_, err := follow.Advance(period * 2.25)
		Expect(err).NotTo(HaveOccurred())
		Expect(follow.Time()).To(BeNumerically("~", period/4, 1e-9))

		_, err = follow.Advance(-period / 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(follow.Time()).To(BeNumerically("~", 3*period/4, 1e-9))
	})

	It("agrees with the kernel state over many small steps", func() {
		el := path.Elements()
		dt := period / 200
		for i := 1; i <= 200; i++ {
			sv, err := follow.Advance(dt)
			Expect(err).NotTo(HaveOccurred())
			want, err := el.StateAt(math.Mod(float64(i)*dt, period))
			Expect(err).NotTo(HaveOccurred())
			Expect(r2.Norm(r2.Sub(sv.Position, want.Position))).To(BeNumerically("<", 1e-8))
		}
	})

	It("picks up element changes on the next frame", func() {
		_, err := follow.Advance(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(path.SetEccentricity(0)).To(Succeed())

		sv, err := follow.Advance(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(sv.Distance()).To(BeNumerically("~", 10, 1e-9))
		Expect(logs.String()).To(ContainSubstring("elements changed"))
	})

	It("follows open orbits without wrapping", func() {
		Expect(path.SetEccentricity(1.5)).To(Succeed())
		follow.Seek(0)
		sv, err := follow.Advance(50)
		Expect(err).NotTo(HaveOccurred())
		Expect(follow.Time()).To(Equal(50.0))
		Expect(sv.Distance()).To(BeNumerically(">", path.Elements().Periapsis()))
	})
})
