package secrets

import "io"

// MaskingWriter masks secret-looking text before writing to the delegate.
type MaskingWriter struct {
	detector *Detector
	delegate io.Writer
}

// NewMaskingWriter wraps w.
func NewMaskingWriter(detector *Detector, w io.Writer) *MaskingWriter {
	return &MaskingWriter{detector: detector, delegate: w}
}

// Write implements io.Writer. It reports len(p) on success to keep the
// io.Writer contract even though the masked text may differ in length.
func (w *MaskingWriter) Write(p []byte) (int, error) {
	masked := w.detector.MaskString(string(p))
	if _, err := w.delegate.Write([]byte(masked)); err != nil {
		return 0, err
	}
	return len(p), nil
}
