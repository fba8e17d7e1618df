package mcp

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kimi-cli/kimi/pkg/message"
	"github.com/kimi-cli/kimi/pkg/tooling"
)

// ConvertResult translates a remote tool result into the local return-value
// model. A remote is_error flag maps to the Error variant carrying the same
// translated content as diagnostic output. Content the local model cannot
// represent is an error, which the dispatcher reports as a runtime failure.
func ConvertResult(result *mcp.CallToolResult) (tooling.ReturnValue, error) {
	content := make(message.Parts, 0, len(result.Content))
	for _, item := range result.Content {
		part, err := convertContent(item)
		if err != nil {
			return nil, err
		}
		content = append(content, part)
	}
	if result.IsError {
		return tooling.Error{
			Output:  content,
			Message: "Tool returned an error. The output may be error message or incomplete output",
			Brief:   "",
		}, nil
	}
	return tooling.Ok{Output: content}, nil
}

func convertContent(item mcp.Content) (message.Part, error) {
	switch c := item.(type) {
	case *mcp.TextContent:
		return message.NewTextPart(c.Text), nil
	case *mcp.ImageContent:
		return message.NewImageURLPart(dataURL(c.MIMEType, c.Data)), nil
	case *mcp.AudioContent:
		return message.NewAudioURLPart(dataURL(c.MIMEType, c.Data)), nil
	case *mcp.EmbeddedResource:
		return convertEmbeddedResource(c.Resource)
	case *mcp.ResourceLink:
		return convertResourceLink(c)
	default:
		return nil, fmt.Errorf("unsupported MCP tool result content: %T", item)
	}
}

func convertEmbeddedResource(res *mcp.ResourceContents) (message.Part, error) {
	if res == nil || res.Blob == nil {
		return nil, fmt.Errorf("unsupported MCP embedded resource: no blob data")
	}
	mimeType := res.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return message.NewImageURLPart(dataURL(mimeType, res.Blob)), nil
	case strings.HasPrefix(mimeType, "audio/"):
		return message.NewAudioURLPart(dataURL(mimeType, res.Blob)), nil
	default:
		return nil, fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}

func convertResourceLink(link *mcp.ResourceLink) (message.Part, error) {
	mimeType := link.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return message.NewImageURLPart(link.URI), nil
	case strings.HasPrefix(mimeType, "audio/"):
		return message.NewAudioURLPart(link.URI), nil
	default:
		return nil, fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
