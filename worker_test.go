package cascade

import (
	"image"
	"testing"

	"github.com/detkit/go-cascade/classifier"
)

// markEngine writes its band into dst so tests can verify task delivery
type markEngine struct{}

func (markEngine) WindowSize() image.Point { return image.Pt(8, 8) }

func (markEngine) Family() classifier.Family { return classifier.Haar }

func (markEngine) ScanRowBand(mask *image.Gray, rect image.Rectangle, dst *image.Gray) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Pix[y*dst.Stride+x] = 255
		}
	}
}

func TestWorkerPool(t *testing.T) {

	pool := newWorkerPool(4)
	defer pool.close()

	if pool.size() != 4 {
		t.Fatalf("pool size = %d, want 4", pool.size())
	}

	dst := image.NewGray(image.Rect(0, 0, 16, 16))

	// one band per worker covering the full image
	for i := 0; i < 4; i++ {
		pool.add(i, scanTask{
			engine: markEngine{},
			rect:   image.Rect(0, i*4, 16, (i+1)*4),
			dst:    dst,
		})
	}

	pool.wait()

	for i, v := range dst.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, want 255", i, v)
		}
	}
}

func TestWorkerPoolReuse(t *testing.T) {

	pool := newWorkerPool(2)
	defer pool.close()

	dst := image.NewGray(image.Rect(0, 0, 8, 8))

	// waits between rounds must not lose later tasks
	for round := 0; round < 3; round++ {
		for i := 0; i < 2; i++ {
			pool.add(i, scanTask{
				engine: markEngine{},
				rect:   image.Rect(0, i*4, 8, (i+1)*4),
				dst:    dst,
			})
		}
		pool.wait()
	}

	for i, v := range dst.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, want 255", i, v)
		}
	}
}

func TestInitWorkersClamp(t *testing.T) {

	d := newTestDetection(t, 0)

	// a single thread runs without a pool
	d.initWorkers(1)

	if d.pool != nil {
		t.Error("single threaded detector built a worker pool")
	}

	// out of range values select one worker per CPU
	d.initWorkers(-5)

	defer d.Close()
}
