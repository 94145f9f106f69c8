package maildir_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/source/maildir"
)

const plainEmail = "From: Chase <no.reply.alerts@chase.com>\r\n" +
	"Subject: Your $5.00 transaction\r\n" +
	"Date: Thu, 05 Oct 2023 19:41:00 -0400\r\n" +
	"Content-Type: text/plain; charset=us-ascii\r\n" +
	"\r\n" +
	"A charge of ($USD) 5.00 at CAFE has been authorized on Oct 5, 2023.\r\n"

const multipartEmail = "From: =?ISO-8859-1?Q?Caixa_Geral_de_Dep=F3sitos?= <alertas@cgd.pt>\r\n" +
	"Subject: =?UTF-8?B?VHJhbnNmZXLDqm5jaWEgcmVjZWJpZGE=?=\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>ignored</p>\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=iso-8859-1\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"Transfer=EAncia recebida de 10,00 EUR\r\n" +
	"--XYZ--\r\n"

const base64Email = "From: alerts@bank.example\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"UnMuNTAwIGRlYml0ZWQg\r\n" +
	"ZnJvbSBhL2MgKioxMjM0\r\n"

func TestParse_Plain(t *testing.T) {
	m, err := maildir.Parse(strings.NewReader(plainEmail))
	require.NoError(t, err)

	assert.Equal(t, maildir.Name, m.Source)
	assert.Equal(t, "Chase <no.reply.alerts@chase.com>", m.From)
	assert.Equal(t, "Your $5.00 transaction", m.Subject)
	assert.Equal(t, time.Date(2023, 10, 5, 23, 41, 0, 0, time.UTC), m.ReceivedAt)
	assert.Equal(t, "A charge of ($USD) 5.00 at CAFE has been authorized on Oct 5, 2023.", m.Body)
}

func TestParse_MultipartQuotedPrintable(t *testing.T) {
	m, err := maildir.Parse(strings.NewReader(multipartEmail))
	require.NoError(t, err)

	assert.Equal(t, "Caixa Geral de Depósitos <alertas@cgd.pt>", m.From)
	assert.Equal(t, "Transferência recebida", m.Subject)
	assert.Equal(t, "Transferência recebida de 10,00 EUR", m.Body)
}

func TestParse_Base64(t *testing.T) {
	m, err := maildir.Parse(strings.NewReader(base64Email))
	require.NoError(t, err)

	assert.Equal(t, "Rs.500 debited from a/c **1234", m.Body)
}

func TestParse_NoTextPart(t *testing.T) {
	email := "From: a@b\r\nContent-Type: text/html\r\n\r\n<p>hi</p>\r\n"

	_, err := maildir.Parse(strings.NewReader(email))
	assert.Error(t, err)
}

func TestSource_FetchAndMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001.eml"), []byte(plainEmail), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002.eml"), []byte(base64Email), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))

	src := maildir.New(dir, nil)

	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "001.eml", msgs[0].ID)
	assert.Equal(t, "002.eml", msgs[1].ID)
	assert.False(t, msgs[1].ReceivedAt.IsZero())

	require.NoError(t, src.MarkProcessed(context.Background(), "001.eml"))
	assert.FileExists(t, filepath.Join(dir, maildir.ProcessedDir, "001.eml"))

	msgs, err = src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "002.eml", msgs[0].ID)

	assert.Error(t, src.MarkProcessed(context.Background(), "../escape"))
}

func TestSource_Fetch_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	htmlOnly := "From: Chase <no.reply.alerts@chase.com>\r\nContent-Type: text/html\r\n\r\n<p>$5.00 at CAFE</p>\r\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.eml"), []byte(base64Email), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.eml"), []byte(htmlOnly), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.eml"), []byte(plainEmail), 0o600))

	var logs bytes.Buffer
	src := maildir.New(dir, slog.New(slog.NewTextHandler(&logs, nil)))

	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "a.eml", msgs[0].ID)
	assert.Equal(t, "c.eml", msgs[1].ID)
	assert.Contains(t, logs.String(), "skipping unreadable mail file")
	assert.Contains(t, logs.String(), "file=b.eml")
	assert.FileExists(t, filepath.Join(dir, "b.eml"))
}
