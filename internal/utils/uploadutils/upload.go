package uploadutils

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

// ContentName returns the CIDv1 (raw codec, sha2-256) of the data. Identical uploads get identical names.
func ContentName(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", errors.Wrap(err, "cannot hash the upload")
	}

	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// SaveContentAddressed saves the upload under `dir` named by its content and returns the path of the file. An existing file of the same name is reused.
func SaveContentAddressed(dir string, r io.Reader) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "cannot read the upload")
	}

	name, err := ContentName(data)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create the upload directory '%v'", dir)
	}

	path := filepath.Join(dir, name+".json")
	if _, err = os.Stat(path); err == nil {
		return path, nil
	}

	// Readers must never see a partial file
	tmp, err := ioutil.TempFile(dir, name+".*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "cannot save the upload")
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "cannot save the upload")
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "cannot save the upload")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "cannot save the upload")
	}

	return path, nil
}
