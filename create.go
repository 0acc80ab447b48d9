package zim

import (
	"bufio"
	"context"
	"crypto/md5" //nolint:gosec // MD5 is the checksum fixed by the archive format
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	digest "github.com/opencontainers/go-digest"

	"github.com/meigma/zim/internal/cluster"
	"github.com/meigma/zim/internal/collector"
	"github.com/meigma/zim/internal/dirent"
	"github.com/meigma/zim/internal/header"
	"github.com/meigma/zim/internal/ioutil"
	"github.com/meigma/zim/internal/mimelist"
	"github.com/meigma/zim/internal/sizing"
	"github.com/meigma/zim/internal/titleindex"
)

// ChecksumSize is the length of the trailing MD5 checksum.
const ChecksumSize = md5.Size

// Result describes a finished archive.
type Result struct {
	// Header is the header written at offset 0.
	Header Header

	// Checksum is the MD5 trailer: the digest of every byte before it.
	Checksum [ChecksumSize]byte

	// Digest is the SHA-256 content digest of the complete file, trailer
	// included.
	Digest digest.Digest

	// Size is the total file size in bytes.
	Size int64

	// Warnings lists non-fatal problems, such as a main page URL that
	// matched no item.
	Warnings []string
}

// Create writes an archive of items to out.
//
// items must be sorted by namespace and then URL; the sequence is consumed
// exactly once. Item mimetype indices refer to mimetypes. out must be
// positioned at offset 0. Sections are written in a single forward pass,
// then the header is rewritten at offset 0 and the file is read back once
// to append the checksum, so out must support reading what was written.
//
// An error leaves out in an undefined state; it must not be used as an
// archive. The context is checked between items.
func Create(ctx context.Context, items iter.Seq[Item], mimetypes []string, out io.ReadWriteSeeker, opts ...CreateOption) (*Result, error) {
	cfg := defaultCreateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pos, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("query output position: %w", err)
	}
	if pos != 0 {
		return nil, fmt.Errorf("%w: at %d", ErrOutputNotEmpty, pos)
	}

	id := cfg.uuid
	if id == uuid.Nil {
		if id, err = uuid.NewRandom(); err != nil {
			return nil, fmt.Errorf("generate archive uuid: %w", err)
		}
	}

	w := &writer{cfg: cfg, logger: cfg.logger}
	w.log().Info("creating archive",
		"uuid", id.String(),
		"compression", cfg.compression.String(),
		"cluster_size", cfg.clusterSize,
		"mimetypes", len(mimetypes))

	res, err := w.create(ctx, items, mimetypes, out, id)
	if err != nil {
		return nil, err
	}

	w.log().Info("archive created",
		"articles", res.Header.ArticleCount,
		"clusters", res.Header.ClusterCount,
		"size", res.Size,
		"digest", res.Digest.String())
	return res, nil
}

// writer holds state for a single archive creation.
type writer struct {
	cfg      createConfig
	logger   *slog.Logger
	warnings []string

	entries  *collector.Collector
	clusters *collector.Collector

	// Per-item sort keys and URLs in article order.
	titles []string
	urls   []string

	payloadBytes uint64
}

// log returns the logger, falling back to a discard logger if nil.
func (w *writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// reportProgress sends a progress event if a callback is configured.
func (w *writer) reportProgress(stage ProgressStage, url string, bytesDone, bytesTotal uint64) {
	if w.cfg.progress == nil {
		return
	}
	w.cfg.progress(ProgressEvent{
		Stage:      stage,
		URL:        url,
		ItemsDone:  len(w.urls),
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
	})
}

func (w *writer) create(ctx context.Context, items iter.Seq[Item], mimetypes []string, out io.ReadWriteSeeker, id uuid.UUID) (*Result, error) {
	var err error
	if w.entries, err = collector.New(w.cfg.tempDir, w.cfg.spillCodec); err != nil {
		return nil, err
	}
	defer w.entries.Close()
	if w.clusters, err = collector.New(w.cfg.tempDir, w.cfg.spillCodec); err != nil {
		return nil, err
	}
	defer w.clusters.Close()

	comp, err := cluster.NewCompressor(w.cfg.compression, w.cfg.compressionLevel, w.cfg.workers)
	if err != nil {
		return nil, err
	}
	defer comp.Close()

	hb := header.NewBuilder(id)
	bw := bufio.NewWriterSize(out, 64<<10)
	cw := &ioutil.CountingWriter{W: bw}

	// Reserve the header; it is rewritten once every position is known.
	if err := cw.WriteZeros(header.Size); err != nil {
		return nil, fmt.Errorf("reserve header: %w", err)
	}

	hb.SetMimeListPos(cw.N)
	if _, err := cw.Write(mimelist.Encode(mimetypes)); err != nil {
		return nil, fmt.Errorf("write mimetype list: %w", err)
	}
	hb.SetURLPtrPos(cw.N)

	if err := w.collect(ctx, items, comp); err != nil {
		return nil, err
	}

	articleCount, err := sizing.IntToUint32(w.entries.Len(), ErrTooManyItems)
	if err != nil {
		return nil, err
	}
	clusterCount, err := sizing.IntToUint32(w.clusters.Len(), ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	hb.SetArticleCount(articleCount)
	hb.SetClusterCount(clusterCount)
	hb.SetMainPage(w.resolvePage("main page", w.cfg.mainPage))
	hb.SetLayoutPage(w.resolvePage("layout page", w.cfg.layoutPage))

	if err := w.writeIndex(cw, hb); err != nil {
		return nil, err
	}
	if err := w.writeClusters(cw, hb); err != nil {
		return nil, err
	}
	hb.SetChecksumPos(cw.N)

	h, err := hb.Seal()
	if err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}
	if err := writeHeader(out, h); err != nil {
		return nil, err
	}
	return w.writeTrailer(out, h)
}

// collect consumes items, filling clusters and directory entries.
func (w *writer) collect(ctx context.Context, items iter.Seq[Item], comp *cluster.Compressor) (err error) {
	pipe := cluster.NewPipeline(ctx, comp, w.cfg.workers, w.clusters.Append)
	defer func() {
		if cerr := pipe.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("encode clusters: %w", wrapOverflowErr(cerr))
		}
	}()

	cur := cluster.New()
	curNS := NamespaceLayout
	var buf []byte
	for item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := checkItemLimit(len(w.urls)); err != nil {
			return err
		}

		if cur.RawSize() > w.cfg.clusterSize || (item.Namespace != curNS && cur.Len() > 0) {
			if err := w.closeCluster(pipe, cur); err != nil {
				return err
			}
			cur = cluster.New()
		}
		curNS = item.Namespace

		entry, err := w.buildEntry(pipe, cur, item)
		if err != nil {
			return err
		}
		if buf, err = entry.AppendBinary(buf[:0]); err != nil {
			return err
		}
		if err := w.entries.Append(buf); err != nil {
			return fmt.Errorf("collect directory entry %q: %w", item.URL, wrapOverflowErr(err))
		}
		w.titles = append(w.titles, titleindex.SortKey(item.Title, item.URL))
		w.urls = append(w.urls, item.URL)
		w.reportProgress(StageClustering, item.URL, w.payloadBytes, 0)
	}

	// The last cluster is emitted even when it holds no blobs.
	return w.closeCluster(pipe, cur)
}

// checkItemLimit reports ErrTooManyItems when n items are already collected
// and one more would not fit the u32 article count.
func checkItemLimit(n int) error {
	_, err := sizing.IntToUint32(n+1, ErrTooManyItems)
	return err
}

func (w *writer) closeCluster(pipe *cluster.Pipeline, cur *cluster.Cluster) error {
	idx := pipe.Count()
	w.log().Debug("cluster closed", "index", idx, "blobs", cur.Len(), "raw_size", cur.RawSize())
	if err := pipe.Submit(cur); err != nil {
		return fmt.Errorf("encode cluster %d: %w", idx, wrapOverflowErr(err))
	}
	return nil
}

// buildEntry returns the directory entry for item, appending its payload to
// cur. The cluster number is the count of clusters closed so far.
func (w *writer) buildEntry(pipe *cluster.Pipeline, cur *cluster.Cluster, item Item) (dirent.Entry, error) {
	if item.IsRedirect() {
		return dirent.Redirect(item.Namespace, item.URL, item.Title, item.Revision, item.RedirectIndex), nil
	}

	clusterNum, err := sizing.IntToUint32(pipe.Count(), ErrSizeOverflow)
	if err != nil {
		return dirent.Entry{}, err
	}
	blob, err := w.readPayload(cur, item)
	if err != nil {
		return dirent.Entry{}, err
	}
	blobNum, err := sizing.IntToUint32(blob, ErrSizeOverflow)
	if err != nil {
		return dirent.Entry{}, err
	}
	return dirent.Content(item.Namespace, item.URL, item.Title, item.MimeType, item.Revision, clusterNum, blobNum), nil
}

func (w *writer) readPayload(cur *cluster.Cluster, item Item) (int, error) {
	rc, err := item.Payload.Open()
	if err != nil {
		return 0, fmt.Errorf("open payload %q: %w", item.URL, err)
	}
	defer rc.Close()

	blob, n, err := cur.AppendFrom(rc)
	if err != nil {
		return 0, fmt.Errorf("read payload %q: %w", item.URL, err)
	}
	w.payloadBytes += uint64(n) //nolint:gosec // n is non-negative
	return blob, nil
}

// resolvePage returns the article index of the first item with url, or
// header.Sentinel when url is empty or matches nothing.
func (w *writer) resolvePage(kind, url string) uint32 {
	if url == "" {
		return header.Sentinel
	}
	i := slices.Index(w.urls, url)
	if i < 0 {
		w.log().Warn(kind+" not found", "url", url)
		w.warnings = append(w.warnings, fmt.Sprintf("%s not found: %s", kind, url))
		return header.Sentinel
	}
	return uint32(i) //nolint:gosec // bounded by the article count
}

// writeIndex writes the URL pointer table, the title pointer table and the
// directory entries.
func (w *writer) writeIndex(cw *ioutil.CountingWriter, hb *header.Builder) error {
	n := uint64(w.entries.Len())

	// Both pointer tables precede the entries and their sizes depend only on
	// the article count, so the entries' position is known up front.
	entriesPos, ok := sizing.MulAddUint64(cw.N, n, collector.TableEntrySize+titleindex.EntrySize)
	if !ok {
		return ErrSizeOverflow
	}

	w.reportProgress(StageWritingIndex, "", 0, w.entries.Size())
	if err := w.entries.WriteTable(cw, entriesPos); err != nil {
		return fmt.Errorf("write url pointer table: %w", wrapOverflowErr(err))
	}

	hb.SetTitlePtrPos(cw.N)
	titles := titleindex.AppendBinary(make([]byte, 0, n*titleindex.EntrySize), titleindex.Build(w.titles))
	if _, err := cw.Write(titles); err != nil {
		return fmt.Errorf("write title pointer table: %w", err)
	}

	if cw.N != entriesPos {
		return fmt.Errorf("%w: directory entries expected at %d, cursor at %d", ErrLayoutMismatch, entriesPos, cw.N)
	}
	if _, err := w.entries.WriteTo(cw); err != nil {
		return fmt.Errorf("write directory entries: %w", err)
	}
	w.reportProgress(StageWritingIndex, "", w.entries.Size(), w.entries.Size())
	return nil
}

// writeClusters writes the cluster pointer table and the clusters.
func (w *writer) writeClusters(cw *ioutil.CountingWriter, hb *header.Builder) error {
	hb.SetClusterPtrPos(cw.N)
	dataPos, ok := sizing.MulAddUint64(cw.N, uint64(w.clusters.Len()), collector.TableEntrySize)
	if !ok {
		return ErrSizeOverflow
	}

	w.reportProgress(StageWritingClusters, "", 0, w.clusters.Size())
	if err := w.clusters.WriteTable(cw, dataPos); err != nil {
		return fmt.Errorf("write cluster pointer table: %w", wrapOverflowErr(err))
	}
	if cw.N != dataPos {
		return fmt.Errorf("%w: clusters expected at %d, cursor at %d", ErrLayoutMismatch, dataPos, cw.N)
	}
	if _, err := w.clusters.WriteTo(cw); err != nil {
		return fmt.Errorf("write clusters: %w", wrapOverflowErr(err))
	}
	w.reportProgress(StageWritingClusters, "", w.clusters.Size(), w.clusters.Size())
	return nil
}

func writeHeader(out io.WriteSeeker, h Header) error {
	raw, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	if _, err := out.Write(raw); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// writeTrailer re-reads the finished file and appends its MD5 checksum.
func (w *writer) writeTrailer(out io.ReadWriteSeeker, h Header) (*Result, error) {
	size, err := sizing.ToInt64(h.ChecksumPos, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	w.reportProgress(StageChecksumming, "", 0, h.ChecksumPos)

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind output: %w", err)
	}
	sum := md5.New() //nolint:gosec // format checksum, not a security boundary
	digester := digest.Canonical.Digester()
	n, err := io.Copy(io.MultiWriter(sum, digester.Hash()), io.LimitReader(out, size))
	if err != nil {
		return nil, fmt.Errorf("read back output: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("read back output: got %d of %d bytes: %w", n, size, io.ErrUnexpectedEOF)
	}

	res := &Result{Header: h, Size: size + ChecksumSize, Warnings: w.warnings}
	sum.Sum(res.Checksum[:0])

	if _, err := out.Seek(size, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to trailer: %w", err)
	}
	if _, err := out.Write(res.Checksum[:]); err != nil {
		return nil, fmt.Errorf("write checksum: %w", err)
	}
	digester.Hash().Write(res.Checksum[:])
	res.Digest = digester.Digest()

	w.reportProgress(StageChecksumming, "", h.ChecksumPos, h.ChecksumPos)
	return res, nil
}
