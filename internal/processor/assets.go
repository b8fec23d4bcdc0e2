package processor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/partition"
	"github.com/woozymasta/voronoimap/internal/render"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

// Asset file names inside an area directory.
const (
	DataFile    = "data.js"
	GeoJSONFile = "partition.geojson"
	PreviewFile = "preview.webp"
	SummaryFile = "summary.json"
)

// Summary describes one generated area; it is written next to the assets.
type Summary struct {
	Name        string          `json:"name"`
	Stations    int             `json:"stations"`
	Regions     int             `json:"regions"`
	Approximate int             `json:"approximate"`
	Factor      float64         `json:"factor"`
	Coverage    float64         `json:"coverage"`
	Stats       partition.Stats `json:"stats"`
	Generated   time.Time       `json:"generated"`
}

func newSummary(name string, res *partition.Result) Summary {
	s := Summary{
		Name:      name,
		Stations:  len(res.Points),
		Regions:   len(res.Regions),
		Factor:    res.Factor,
		Coverage:  res.Coverage(),
		Stats:     res.Stats,
		Generated: time.Now().UTC(),
	}
	for _, r := range res.Regions {
		if r.Approximate {
			s.Approximate++
		}
	}
	return s
}

// WriteDataJS writes the stations, closed region rings and the region to
// station index list as ES module constants.
func WriteDataJS(w io.Writer, res *partition.Result) error {
	bw := bufio.NewWriter(w)

	num := func(v float64) {
		_, _ = bw.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}

	_, _ = bw.WriteString("export const stations = [\n")
	for _, s := range res.Points {
		label, err := json.Marshal(s.Label)
		if err != nil {
			return err
		}
		_ = bw.WriteByte('[')
		num(s.Point.Lat)
		_, _ = bw.WriteString(", ")
		num(s.Point.Lon)
		_, _ = bw.WriteString(", ")
		_, _ = bw.Write(label)
		_, _ = bw.WriteString("],\n")
	}
	_, _ = bw.WriteString("];\n")

	_, _ = bw.WriteString("export const regions = [\n")
	for _, r := range res.Regions {
		_ = bw.WriteByte('[')
		for i, p := range geo.ClosedRing(r.Ring) {
			if i > 0 {
				_, _ = bw.WriteString(", ")
			}
			_ = bw.WriteByte('[')
			num(p.Lat)
			_, _ = bw.WriteString(", ")
			num(p.Lon)
			_ = bw.WriteByte(']')
		}
		_, _ = bw.WriteString("],\n")
	}
	_, _ = bw.WriteString("];\n")

	_, _ = bw.WriteString("export const regionStations = [")
	for i, r := range res.Regions {
		if i > 0 {
			_, _ = bw.WriteString(", ")
		}
		_, _ = bw.WriteString(strconv.Itoa(r.Index))
	}
	_, _ = bw.WriteString("];\n")

	return bw.Flush()
}

// FeatureCollection encodes stations as points and regions as polygons.
func FeatureCollection(res *partition.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, s := range res.Points {
		fc.Append(geo.StationFeature(s, i))
	}
	for _, r := range res.Regions {
		f := geo.RingFeature(r.Ring)
		f.Properties["name"] = r.Station.Label
		f.Properties["index"] = r.Index
		f.Properties["approximate"] = r.Approximate
		fc.Append(f)
	}
	return fc
}

func writeData(dir string, res *partition.Result, minified bool) error {
	var buf bytes.Buffer
	if err := WriteDataJS(&buf, res); err != nil {
		return err
	}

	data := buf.Bytes()
	if minified {
		m := minify.New()
		m.AddFunc("application/javascript", js.Minify)
		out, err := m.Bytes("application/javascript", data)
		if err != nil {
			return err
		}
		data = out
	}

	return os.WriteFile(filepath.Join(dir, DataFile), data, 0644)
}

func writePreview(dir string, res *partition.Result, width int, title string) error {
	img, err := render.Preview(res, width, title)
	if err != nil {
		return err
	}

	return createFile(filepath.Join(dir, PreviewFile), func(w io.Writer) error {
		return render.EncodeWebP(w, img)
	})
}

func writeJSON(path string, v any) error {
	return createFile(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

// createFile creates path and hands it to write.
func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return write(f)
}
