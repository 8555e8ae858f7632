package mixture_test

import (
	"io"

	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/internal/stream"
	"github.com/hupe1980/mixgo/mixture"
)

func writeRecords(w io.Writer, records ...mixture.GroupRecord) error {
	sw := stream.NewWriter(w)
	for i := range records {
		data, err := codec.Default.Marshal(&records[i])
		if err != nil {
			return err
		}
		if err := sw.Write(data); err != nil {
			return err
		}
	}
	return sw.Flush()
}
