package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gorustyt/navbuild/common/message"
	"github.com/gorustyt/navbuild/config"
	"github.com/gorustyt/navbuild/debug_utils"
	"github.com/gorustyt/navbuild/navbuild"
)

// writeOutput writes a successful build to out.Path in out.Format.
func writeOutput(res *navbuild.Result, out config.OutputConfig) (err error) {
	if dir := filepath.Dir(out.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(out.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := encodeOutput(w, res, out); err != nil {
		return err
	}
	return w.Flush()
}

func encodeOutput(w io.Writer, res *navbuild.Result, out config.OutputConfig) error {
	switch out.Format {
	case config.FormatObj:
		return debug_utils.DuDumpPolyMeshToObj(res.PolyMesh, w)
	case config.FormatDetailObj:
		m := debug_utils.DetailTriMesh(res.DetailMesh, out.WeldDistance)
		if out.ZUp {
			m.ConvertToZUp()
		}
		return m.WriteObj(w)
	case config.FormatBin:
		if err := debug_utils.DuDumpPolyMesh(res.PolyMesh, w); err != nil {
			return err
		}
		return debug_utils.DuDumpPolyMeshDetail(res.DetailMesh, w)
	case config.FormatProto:
		_, err := w.Write(message.EncodeNavMesh(res.PolyMesh, res.DetailMesh))
		return err
	}
	return fmt.Errorf("unknown output format %q", out.Format)
}
