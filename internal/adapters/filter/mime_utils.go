package filter

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
)

// wordDecoder decodes RFC 2047 encoded-words in headers, resolving legacy
// charsets through the IANA index so non-UTF-8 subjects survive parsing.
var wordDecoder = mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := ianaindex.MIME.Encoding(charset)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// decodeHeader decodes an encoded-word header value, falling back to the raw
// value when decoding fails.
func decodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// messageFromRaw parses a raw RFC 5322 message into the normalized form the
// analyzer consumes. Attachment file names are collected from multipart
// Content-Disposition headers; bodies keep only textual parts.
func messageFromRaw(sender string, recipients []string, raw []byte) (*core.Message, error) {
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	body, attachments, err := extractContent(parsed)
	if err != nil {
		return nil, err
	}

	headers := make(map[string][]string, len(parsed.Header))
	for key, values := range parsed.Header {
		headers[key] = values
	}

	return &core.Message{
		Sender:      sender,
		Recipients:  recipients,
		Subject:     decodeHeader(parsed.Header.Get("Subject")),
		Body:        body,
		Attachments: attachments,
		Headers:     headers,
	}, nil
}

// extractContent returns the textual body and attachment names of a message.
// Non-multipart messages are returned whole.
func extractContent(msg *mail.Message) (string, []string, error) {
	contentType := msg.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", nil, fmt.Errorf("failed to read message body: %w", readErr)
		}
		return string(bodyBytes), nil, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", nil, fmt.Errorf("failed to read message body: %w", readErr)
		}
		return string(bodyBytes), nil, nil
	}

	var textParts []string
	var attachments []string

	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep what we collected; a truncated trailing part should not
			// discard the rest of the message.
			break
		}

		if name := partFileName(part); name != "" {
			attachments = append(attachments, name)
			continue
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if partType == "" || strings.HasPrefix(partType, "text/") {
			data, err := io.ReadAll(part)
			if err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}

	return strings.Join(textParts, "\n"), attachments, nil
}

// partFileName returns the attachment file name of a part, or "" for inline
// content.
func partFileName(part *multipart.Part) string {
	if name := part.FileName(); name != "" {
		return decodeHeader(name)
	}
	disposition, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err == nil && disposition == "attachment" {
		if name, ok := params["filename"]; ok {
			return decodeHeader(name)
		}
	}
	return ""
}
