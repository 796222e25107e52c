package render

import "strings"

// Markdown renders content as terminal markdown with a pooled renderer.
func Markdown(content string, opts Options) (string, error) {
	r, key, err := replyRenderers.acquire(opts)
	if err != nil {
		return "", err
	}
	defer replyRenderers.release(key, r)

	return r.Render(content)
}

// Reply renders an assistant reply, falling back to the raw text when the
// renderer fails. Surrounding blank lines added by glamour are trimmed.
func Reply(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
