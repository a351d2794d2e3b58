package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
)

// Outlook .msg files are OLE compound files. Each MAPI property is a
// stream named __substg1.0_<PROPID><TYPE>; attachments live in
// __attach_version1.0_#NNNNNNNN storages.
const (
	propStreamPrefix  = "__substg1.0_"
	attachStoragePfx  = "__attach_version1.0_"
	rootEntryName     = "Root Entry"
	propTypeUnicode   = "001F"
	propTypeString8   = "001E"
	propSubject       = "0037"
	propTransportHdrs = "007D"
	propSenderName    = "0C1A"
	propSenderEmail   = "0C1F"
	propDisplayCc     = "0E03"
	propDisplayTo     = "0E04"
	propBody          = "1000"
	propAttachData    = "3701"
	propAttachName    = "3704"
	propAttachLong    = "3707"
	propAttachMime    = "370E"
)

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func readMSG(path string) (*mailMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := mscfb.New(file)
	if err != nil {
		return nil, err
	}

	msg := &mailMessage{}
	var senderName, senderEmail, headers string
	attachments := map[string]*mailAttachment{}
	var order []string

	err = walkEntries(doc.Next, func(entry *mscfb.File) error {
		name := strings.ToUpper(entry.Name)
		if !strings.HasPrefix(name, strings.ToUpper(propStreamPrefix)) || len(name) < len(propStreamPrefix)+8 {
			return nil
		}
		tag := name[len(propStreamPrefix):]
		prop, typ := tag[:4], tag[4:8]

		data := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, data); err != nil {
			return fmt.Errorf("read msg stream %s: %w", entry.Name, err)
		}

		parents := entry.Path
		if len(parents) > 0 && parents[0] == rootEntryName {
			parents = parents[1:]
		}

		switch {
		case len(parents) == 0:
			value := decodeProp(typ, data)
			switch prop {
			case propSubject:
				msg.Subject = value
			case propBody:
				msg.Body = value
			case propSenderName:
				senderName = value
			case propSenderEmail:
				senderEmail = value
			case propDisplayTo:
				msg.To = value
			case propDisplayCc:
				msg.Cc = value
			case propTransportHdrs:
				headers = value
			}
		case len(parents) == 1 && strings.HasPrefix(parents[0], attachStoragePfx):
			key := parents[0]
			a, ok := attachments[key]
			if !ok {
				a = &mailAttachment{}
				attachments[key] = a
				order = append(order, key)
			}
			switch prop {
			case propAttachData:
				a.Data = data
			case propAttachLong:
				a.Name = decodeProp(typ, data)
			case propAttachName:
				if a.Name == "" {
					a.Name = decodeProp(typ, data)
				}
			case propAttachMime:
				a.ContentType = decodeProp(typ, data)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg.From = formatSender(senderName, senderEmail)
	if headers != "" {
		if m, err := mail.ReadMessage(strings.NewReader(headers + "\r\n\r\n")); err == nil {
			if d, err := m.Header.Date(); err == nil {
				msg.Date = d
			}
		}
	}
	for _, key := range order {
		msg.Attachments = append(msg.Attachments, *attachments[key])
	}
	return msg, nil
}

// walkEntries calls visit for each entry next yields until io.EOF. Any
// other error from next, such as a corrupt or truncated directory, is
// returned rather than ending the walk early.
func walkEntries(next func() (*mscfb.File, error), visit func(*mscfb.File) error) error {
	for {
		entry, err := next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read msg: %w", err)
		}
		if err := visit(entry); err != nil {
			return err
		}
	}
}

// decodeProp decodes a string property stored as UTF-16LE or 8-bit text.
func decodeProp(typ string, data []byte) string {
	switch typ {
	case propTypeUnicode:
		out, err := utf16Decoder.NewDecoder().Bytes(data)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(out), "\x00")
	case propTypeString8:
		return string(bytes.TrimRight(data, "\x00"))
	default:
		return ""
	}
}

func formatSender(name, email string) string {
	switch {
	case name != "" && email != "" && name != email:
		return (&mail.Address{Name: name, Address: email}).String()
	case email != "":
		return email
	default:
		return name
	}
}
