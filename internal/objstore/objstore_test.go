package objstore

import "testing"

func TestIsRemote(t *testing.T) {
	if !IsRemote("s3://bucket/key.tsz") {
		t.Error("s3 URI not detected")
	}
	if IsRemote("/tmp/key.tsz") || IsRemote("relative/key.tsz") {
		t.Error("local path detected as remote")
	}
}

func TestOpenRejectsBadURIs(t *testing.T) {
	for _, uri := range []string{
		"http://bucket/key",
		"s3://bucketonly",
		"s3:///key",
		"s3://",
	} {
		if _, _, err := Open(uri); err == nil {
			t.Errorf("Open(%q) accepted a malformed URI", uri)
		}
	}
}
