package export

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-hwlog-viewer/internal/core/model"
)

type JSONExporter struct{}

type jsonDocument struct {
	Result   model.RenderResult `json:"result"`
	Locale   string             `json:"locale"`
	Timezone string             `json:"timezone"`
	Points   []Row              `json:"points"`
}

func (JSONExporter) Name() string { return "json" }
func (JSONExporter) Binary() bool { return false }

func (JSONExporter) Export(w io.Writer, doc Document) error {
	payload := jsonDocument{
		Result:   doc.Result,
		Locale:   doc.values().Locale(),
		Timezone: doc.location().String(),
		Points:   doc.Rows(doc.Result.Series.Main),
	}

	data, err := sonic.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
