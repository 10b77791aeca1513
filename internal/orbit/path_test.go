package orbit

import (
	"bytes"
	"math"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/kepler"
)

var _ = Describe("Path", func() {
	var (
		path *Path
		logs *bytes.Buffer
		cfg  Config
	)

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		cfg = Config{
			SemiMajorAxis:        10,
			Eccentricity:         0.5,
			Gravity:              400,
			GravityDistanceScale: 2,
		}
		var err error
		path, err = NewPath(cfg, kitlog.NewLogfmtLogger(logs))
		Expect(err).NotTo(HaveOccurred())
	})

	It("derives mu from gravity and distance scale", func() {
		Expect(path.Elements().Mu).To(Equal(100.0))
	})

	It("starts at revision 1", func() {
		Expect(path.Revision()).To(Equal(uint64(1)))
	})

	Describe("setters", func() {
		It("bump the revision and refresh the memoized geometry", func() {
			Expect(path.SetEccentricity(0.6)).To(Succeed())
			Expect(path.Revision()).To(Equal(uint64(2)))

			b, err := path.SemiMinorAxis()
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeNumerically("~", 8, 1e-12))
			Expect(path.FocusPoint().Y).To(BeNumerically("~", 6, 1e-12))

			Expect(path.SetArgumentOfPeriapsis(math.Pi / 2)).To(Succeed())
			Expect(path.Revision()).To(Equal(uint64(3)))
			Expect(path.FocusPoint().X).To(BeNumerically("~", 6, 1e-12))
		})

		It("rescale mu when gravity changes", func() {
			Expect(path.SetGravity(100)).To(Succeed())
			Expect(path.Elements().Mu).To(Equal(25.0))
			Expect(path.SetGravityDistanceScale(1)).To(Succeed())
			Expect(path.Elements().Mu).To(Equal(100.0))
			Expect(path.Revision()).To(Equal(uint64(3)))
		})

		It("reject invalid values without touching state", func() {
			Expect(path.SetSemiMajorAxis(-4)).To(MatchError(kepler.ErrDomain))
			Expect(path.SetEccentricity(math.NaN())).To(MatchError(kepler.ErrDomain))
			Expect(path.SetGravity(0)).To(MatchError(kepler.ErrDomain))
			Expect(path.SetGravityDistanceScale(0)).To(MatchError(kepler.ErrDomain))

			Expect(path.Revision()).To(Equal(uint64(1)))
			Expect(path.Config()).To(Equal(cfg))
			Expect(logs.String()).To(ContainSubstring("level=warning"))
		})

		It("apply a whole config with a single revision", func() {
			next := cfg
			next.SemiMajorAxis = 20
			next.Eccentricity = 0
			Expect(path.Set(next)).To(Succeed())
			Expect(path.Revision()).To(Equal(uint64(2)))
			Expect(path.Elements().Conic()).To(Equal(kepler.Circle))
		})
	})

	Describe("Curve", func() {
		It("lays out the five axis points", func() {
			pts, err := path.Curve()
			Expect(err).NotTo(HaveOccurred())
			Expect(pts).To(HaveLen(5))

			b := 10 * math.Sqrt(0.75)
			Expect(pts[0].Position.X).To(BeNumerically("~", b, 1e-12))
			Expect(pts[1].Position).To(Equal(r2.Vec{Y: 10}))
			Expect(pts[3].Position).To(Equal(r2.Vec{Y: -10}))
			Expect(pts[4]).To(Equal(pts[0]))
		})

		It("is undefined for open orbits", func() {
			Expect(path.SetEccentricity(1.5)).To(Succeed())
			_, err := path.Curve()
			Expect(err).To(MatchError(kepler.ErrDomain))
		})

		It("returns a copy", func() {
			pts, _ := path.Curve()
			pts[0].Position = r2.Vec{}
			again, _ := path.Curve()
			Expect(again[0].Position).NotTo(Equal(r2.Vec{}))
		})
	})

	Describe("Sample", func() {
		It("traces the ellipse from the focus", func() {
			pts, err := path.Sample(64)
			Expect(err).NotTo(HaveOccurred())
			Expect(pts).To(HaveLen(64))

			el := path.Elements()
			for _, p := range pts {
				r := r2.Norm(p)
				Expect(r).To(BeNumerically(">=", el.Periapsis()-1e-9))
				Expect(r).To(BeNumerically("<=", el.Apoapsis()+1e-9))
			}
			Expect(pts[0].X).To(BeNumerically("~", el.Periapsis(), 1e-12))
		})

		It("bounds open orbits", func() {
			Expect(path.SetEccentricity(1)).To(Succeed())
			pts, err := path.Sample(33)
			Expect(err).NotTo(HaveOccurred())

			q := path.Elements().Periapsis()
			Expect(r2.Norm(pts[0])).To(BeNumerically("~", OpenSampleExtent*q, 1e-9))
			Expect(r2.Norm(pts[32])).To(BeNumerically("~", OpenSampleExtent*q, 1e-9))
			Expect(r2.Norm(pts[16])).To(BeNumerically("~", q, 1e-12))

			Expect(path.SetEccentricity(2)).To(Succeed())
			pts, err = path.Sample(33)
			Expect(err).NotTo(HaveOccurred())
			q = path.Elements().Periapsis()
			Expect(r2.Norm(pts[0])).To(BeNumerically("~", OpenSampleExtent*q, 1e-9))
		})

		It("rejects fewer than two points", func() {
			_, err := path.Sample(1)
			Expect(err).To(MatchError(kepler.ErrDomain))
		})
	})

	Describe("Velocity", func() {
		It("matches the kernel on an ellipse", func() {
			el := path.Elements()
			sv, err := el.StateFromAnomaly(1.2)
			Expect(err).NotTo(HaveOccurred())

			v, err := path.Velocity(sv.Position)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.X).To(BeNumerically("~", sv.Velocity.X, 1e-9))
			Expect(v.Y).To(BeNumerically("~", sv.Velocity.Y, 1e-9))
		})

		Context("on a circular orbit", func() {
			BeforeEach(func() {
				Expect(path.SetEccentricity(0)).To(Succeed())
			})

			It("memoizes the speed for the current revision", func() {
				_, ok := path.memoizedSpeed()
				Expect(ok).To(BeFalse())

				v, err := path.Velocity(r2.Vec{X: 10})
				Expect(err).NotTo(HaveOccurred())
				Expect(v.X).To(BeNumerically("~", 0, 1e-12))
				Expect(v.Y).To(BeNumerically("~", math.Sqrt(10), 1e-12))

				speed, ok := path.memoizedSpeed()
				Expect(ok).To(BeTrue())
				Expect(speed).To(BeNumerically("~", math.Sqrt(10), 1e-12))

				v, err = path.Velocity(r2.Vec{Y: 10})
				Expect(err).NotTo(HaveOccurred())
				Expect(r2.Norm(v)).To(BeNumerically("~", speed, 1e-12))
				Expect(v.X).To(BeNumerically("<", 0))
			})

			It("drops the memo when the elements change", func() {
				_, err := path.Velocity(r2.Vec{X: 10})
				Expect(err).NotTo(HaveOccurred())
				Expect(path.SetGravity(1600)).To(Succeed())

				_, ok := path.memoizedSpeed()
				Expect(ok).To(BeFalse())

				v, err := path.Velocity(r2.Vec{X: 10})
				Expect(err).NotTo(HaveOccurred())
				Expect(r2.Norm(v)).To(BeNumerically("~", math.Sqrt(40), 1e-12))
			})
		})

		It("is safe for concurrent readers and writers", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					for j := 0; j < 50; j++ {
						if i%2 == 0 {
							_ = path.SetEccentricity(float64(j%3) * 0.2)
							continue
						}
						_, _ = path.Sample(16)
						_, _ = path.Velocity(r2.Vec{X: 5})
					}
				}(i)
			}
			wg.Wait()
			Expect(path.Revision()).To(Equal(uint64(1 + 4*50)))
		})
	})
})
