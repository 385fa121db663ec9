package platform

import "fmt"

// ObjectURL returns the public URL of an object in a path-style bucket.
// Example: https://s3.amazonaws.com/phpcloud-templates/3f2a....yaml
func ObjectURL(host, bucket, key string) string {
	return fmt.Sprintf("https://%s/%s/%s", host, bucket, key)
}
