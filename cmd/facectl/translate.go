package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

var errUsage = errors.New("unknown command (try: face, mouth, love, blink, clear, bl, tone, melody, stop, theme, wifi, image, raw)")

// Translate converts one interactive command into the JSON line to send.
// For the image command it also returns the file contents to stream after
// the panel acknowledges.
func Translate(line string) (msg string, payload []byte, err error) {
	words, err := shlex.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("parse: %w", err)
	}
	if len(words) == 0 {
		return "", nil, errUsage
	}

	switch words[0] {
	case "face", "bl":
		if len(words) != 2 || (words[1] != "on" && words[1] != "off") {
			return "", nil, fmt.Errorf("usage: %s on|off", words[0])
		}
		return jsonLine(map[string]interface{}{"cmd": words[0], "on": words[1] == "on"})

	case "mouth", "love":
		if len(words) != 2 {
			return "", nil, fmt.Errorf("usage: %s <0.0-1.0>", words[0])
		}
		v, err := strconv.ParseFloat(words[1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("usage: %s <0.0-1.0>", words[0])
		}
		key := "open"
		if words[0] == "love" {
			key = "value"
		}
		return jsonLine(map[string]interface{}{"cmd": words[0], key: v})

	case "blink", "stop", "wifi":
		if len(words) != 1 {
			return "", nil, fmt.Errorf("usage: %s", words[0])
		}
		return jsonLine(map[string]interface{}{"cmd": words[0]})

	case "clear":
		color := "#000000"
		if len(words) == 2 {
			color = words[1]
		} else if len(words) > 2 {
			return "", nil, errors.New("usage: clear [#RRGGBB]")
		}
		return jsonLine(map[string]interface{}{"cmd": "clear", "color": color})

	case "tone":
		if len(words) != 3 {
			return "", nil, errors.New("usage: tone <freq> <duration-ms>")
		}
		freq, err1 := strconv.Atoi(words[1])
		dur, err2 := strconv.Atoi(words[2])
		if err1 != nil || err2 != nil {
			return "", nil, errors.New("usage: tone <freq> <duration-ms>")
		}
		return jsonLine(map[string]interface{}{"cmd": "tone", "freq": freq, "dur": dur})

	case "melody":
		if len(words) != 2 {
			return "", nil, errors.New("usage: melody <freq:dur,freq:dur,...>")
		}
		return jsonLine(map[string]interface{}{"cmd": "melody", "notes": words[1]})

	case "theme":
		if len(words) < 2 || len(words) > 3 {
			return "", nil, errors.New("usage: theme <slot> [save]")
		}
		slot, err := strconv.Atoi(words[1])
		if err != nil || slot < 0 || slot > 255 {
			return "", nil, errors.New("usage: theme <slot> [save]")
		}
		if len(words) == 3 {
			if words[2] != "save" {
				return "", nil, errors.New("usage: theme <slot> [save]")
			}
			return jsonLine(map[string]interface{}{"cmd": "theme", "slot": slot, "save": true})
		}
		return jsonLine(map[string]interface{}{"cmd": "theme", "slot": slot})

	case "image":
		if len(words) != 2 {
			return "", nil, errors.New("usage: image <file.jpg>")
		}
		data, err := os.ReadFile(words[1])
		if err != nil {
			return "", nil, err
		}
		msg, _, err := jsonLine(map[string]interface{}{"cmd": "image", "len": len(data)})
		return msg, data, err

	case "raw":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "raw"))
		if !json.Valid([]byte(rest)) {
			return "", nil, errors.New("raw argument must be valid JSON")
		}
		return rest, nil, nil
	}

	return "", nil, errUsage
}

func jsonLine(v map[string]interface{}) (string, []byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	return string(data), nil, nil
}
