package render

// OutputDimensions is the fixed 9:16 vertical output size requested
// from the render service.
var OutputDimensions = [2]int{1080, 1920}

// Request is the JSON body POSTed to the render service for one
// segment. Field names are part of the service's wire contract.
type Request struct {
	ProjectFile string    `json:"projectFile"`
	Variables   Variables `json:"variables"`
	Settings    Settings  `json:"settings"`
}

// Variables carries the source video, overlay style, and time window
// for one segment.
type Variables struct {
	VideoSources   []string `json:"videoSources"`
	TitleText      string   `json:"titleText"`
	TitleBgColor   string   `json:"titleBgColor"`
	TitleTextColor string   `json:"titleTextColor"`
	SegmentStart   float64  `json:"segmentStart"`
	SegmentEnd     float64  `json:"segmentEnd"`
}

type Settings struct {
	OutFile    string `json:"outFile"`
	OutDir     string `json:"outDir"`
	Dimensions [2]int `json:"dimensions"`
}

// Response reports the file name the service actually wrote.
type Response struct {
	OutputFile string `json:"outputFile"`
}
