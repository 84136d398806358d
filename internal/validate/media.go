package validate

// Media upload ceilings in bytes.
const (
	MaxImageBytes = 5 * 1024 * 1024
	MaxAudioBytes = 10 * 1024 * 1024
)

// allowedImageTypes is the closed set of accepted image MIME types.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// allowedAudioTypes is the closed set of accepted audio MIME types.
var allowedAudioTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/mp3":  true,
	"audio/wav":  true,
	"audio/ogg":  true,
	"audio/webm": true,
}

// MediaResult reports the outcome of a media upload check. Size and type
// violations carry dedicated messages so the UI can tell the user which
// constraint was broken.
type MediaResult struct {
	Valid  bool
	Errors []string
}

// ImageFile checks an image upload against the 5 MB ceiling and the
// accepted MIME types (jpeg, png, webp). Both failures are reported when
// both apply.
func ImageFile(size int64, mimeType string) MediaResult {
	c := &checker{}
	if size > MaxImageBytes {
		c.addError("image exceeds the 5 MB size limit")
	}
	if !allowedImageTypes[mimeType] {
		c.addError("image type %q is not allowed; use jpeg, png, or webp", mimeType)
	}
	return MediaResult{Valid: len(c.errs) == 0, Errors: nonNil(c.errs)}
}

// AudioFile checks an audio upload against the 10 MB ceiling and the
// accepted MIME types (mp3, wav, ogg, webm).
func AudioFile(size int64, mimeType string) MediaResult {
	c := &checker{}
	if size > MaxAudioBytes {
		c.addError("audio exceeds the 10 MB size limit")
	}
	if !allowedAudioTypes[mimeType] {
		c.addError("audio type %q is not allowed; use mp3, wav, ogg, or webm", mimeType)
	}
	return MediaResult{Valid: len(c.errs) == 0, Errors: nonNil(c.errs)}
}

func nonNil(errs []string) []string {
	if errs == nil {
		return []string{}
	}
	return errs
}
