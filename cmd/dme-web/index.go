package main

import "net/http"

// handleIndex serves the single-page UI.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>DME PRO - Equipment Documentation</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  header { text-align: center; padding: 1.5rem; color: #fff; border-radius: 10px;
           background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
  .card { border: 1px solid #ddd; border-radius: 8px; padding: 1rem; margin: 1rem 0; }
  .error { background: #f8d7da; border-color: #f5c6cb; }
  .ok { background: #d4edda; border-color: #c3e6cb; }
  progress { width: 100%; }
  button { padding: .5rem 1.25rem; }
</style>
</head>
<body>
<header><h1>DME PRO</h1><p>Upload equipment photos &rarr; automatic Google Docs creation</p></header>

<div class="card">
  <input type="file" id="files" multiple accept=".jpg,.jpeg,.png,.zip">
  <button id="start">Start Processing</button>
</div>
<div class="card" id="status" hidden>
  <progress id="bar" max="1" value="0"></progress>
  <p id="msg"></p>
  <p id="links"></p>
</div>

<script>
const el = id => document.getElementById(id);
el('start').onclick = async () => {
  const files = el('files').files;
  if (!files.length) { show('Select images or a zip archive first.', 'error'); return; }
  const form = new FormData();
  for (const f of files) form.append('files', f);
  show('Uploading...');
  let resp = await fetch('/api/uploads', { method: 'POST', body: form });
  let body = await resp.json();
  if (!resp.ok) { show(body.error, 'error'); return; }
  resp = await fetch('/api/process/start', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ sessionId: body.sessionId }),
  });
  body = await resp.json();
  if (!resp.ok) { show(body.error, 'error'); return; }
  poll(body.jobId);
};

async function poll(jobId) {
  const resp = await fetch('/api/process/' + jobId);
  const job = await resp.json();
  if (job.status === 'error') { show(job.error, 'error'); return; }
  if (job.status !== 'complete') {
    el('bar').max = job.total || 1;
    el('bar').value = job.processed || 0;
    show('Processing ' + (job.processed || 0) + '/' + (job.total || '?') + '...');
    setTimeout(() => poll(jobId), 1500);
    return;
  }
  const s = job.summary;
  el('bar').value = el('bar').max;
  show('Complete: ' + s.success + ' succeeded, ' + s.failed + ' failed, ' +
       s.operations + ' operation folder(s).', 'ok');
  el('links').innerHTML =
    '<a href="' + s.masterFolderUrl + '" target="_blank">Open master folder</a> &middot; ' +
    '<a href="/api/process/' + jobId + '/csv">Download results CSV</a>';
}

function show(text, cls) {
  el('status').hidden = false;
  el('status').className = 'card ' + (cls || '');
  el('msg').textContent = text;
}
</script>
</body>
</html>
`
