// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Neurosynth explorer</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 72rem; margin: 2rem auto; color: #111827; }
section { border: 1px solid #e5e7eb; border-radius: .75rem; padding: 1rem; margin-bottom: 1rem; }
.term-list { list-style: none; padding: 0; max-height: 20rem; overflow-y: auto; }
button.term, .study button { width: 100%; text-align: left; background: none; border: 1px solid transparent; padding: .4rem; cursor: pointer; }
button.term:hover { border-color: #e5e7eb; }
.tag { border-radius: 9999px; border: 1px solid #e5e7eb; background: #f3f4f6; padding: .2rem .6rem; cursor: pointer; }
.empty, .count, .year, .hint { color: #6b7280; }
.notice { color: #b45309; background: #fffbeb; border: 1px solid #fde68a; border-radius: .5rem; padding: .75rem; }
.error { color: #b91c1c; background: #fef2f2; border: 1px solid #fecaca; border-radius: .5rem; padding: 1rem; }
.error pre { white-space: pre-wrap; }
.study-head { display: flex; justify-content: space-between; gap: 1rem; }
.title { font-weight: 600; font-size: 1.1rem; }
.hidden { display: none; }
</style>
</head>
<body>
<h1>Neurosynth explorer</h1>

<form id="explorer" method="get" action="/">
<section>
<h2>Terms</h2>
<input name="filter" value="{{.Params.Filter}}" placeholder="filter terms">
<div id="terms-out">{{.Terms}}</div>
</section>

<section>
<h2>Related terms</h2>
<input id="input-term" name="term" value="{{.Params.Term}}" placeholder="amygdala">
<button type="submit">Search</button>
<div id="related-out">{{.Related}}</div>
</section>

<section>
<h2>Studies</h2>
<input id="input-q" name="q" value="{{.Params.Query}}" placeholder="pain AND NOT memory" size="60">
<input name="from" value="{{.Params.From}}" placeholder="from" size="6">
<input name="to" value="{{.Params.To}}" placeholder="to" size="6">
<select name="sort">
<option value="desc"{{if ne .Sort "asc"}} selected{{end}}>newest first</option>
<option value="asc"{{if eq .Sort "asc"}} selected{{end}}>oldest first</option>
</select>
<button type="submit">Search</button>
<div id="query-out">{{.Studies}}</div>
</section>
</form>

<template id="loading-tpl">{{.Loading}}</template>

<script>
const form = document.getElementById('explorer');
const loading = document.getElementById('loading-tpl').innerHTML;
const debounceMs = {{.DebounceMillis}};
const panels = {};

// refresh loads a fragment into out. Only the newest request per panel
// may write its response.
function refresh(out, path, params) {
  const p = panels[out] || (panels[out] = { seq: 0, ctl: null, timer: null });
  const seq = ++p.seq;
  if (p.ctl) p.ctl.abort();
  p.ctl = new AbortController();
  const el = document.getElementById(out);
  const prev = el.innerHTML;
  el.innerHTML = loading;
  fetch(path + '?' + new URLSearchParams(params), { signal: p.ctl.signal })
    .then((r) => (r.status === 204 ? prev : r.text()))
    .then((html) => { if (seq === p.seq) el.innerHTML = html; })
    .catch((err) => { if (err.name !== 'AbortError' && seq === p.seq) el.textContent = String(err); });
}

function later(out, fn) {
  const p = panels[out] || (panels[out] = { seq: 0, ctl: null, timer: null });
  clearTimeout(p.timer);
  p.timer = setTimeout(fn, debounceMs);
}

function value(name) { return form.elements[name].value; }

// studies refreshes the studies panel. Live refreshes leave the panel
// alone while the query is incomplete.
function studies(live) {
  if (value('q').trim() === '') { document.getElementById('query-out').innerHTML = ''; return; }
  const params = { q: value('q'), from: value('from'), to: value('to'), sort: value('sort') };
  if (live) params.live = '1';
  refresh('query-out', '/fragments/studies', params);
}

form.elements['filter'].addEventListener('input', () => {
  refresh('terms-out', '/fragments/terms', { filter: value('filter') });
});
form.elements['term'].addEventListener('input', () => later('related-out', () => {
  if (value('term').trim() === '') { document.getElementById('related-out').innerHTML = ''; return; }
  refresh('related-out', '/fragments/related', { term: value('term') });
}));
form.elements['q'].addEventListener('input', () => later('query-out', () => studies(true)));
for (const name of ['from', 'to', 'sort']) {
  form.elements[name].addEventListener('input', () => studies(true));
}

document.getElementById('terms-out').addEventListener('click', (e) => {
  const btn = e.target.closest('button[data-term]');
  if (!btn) return;
  e.preventDefault();
  form.elements['term'].value = btn.dataset.term;
  refresh('related-out', '/fragments/related', { term: btn.dataset.term });
});
document.getElementById('related-out').addEventListener('click', (e) => {
  const btn = e.target.closest('button[data-term]');
  if (!btn) return;
  e.preventDefault();
  const q = form.elements['q'];
  const cur = q.value;
  const needsAnd = cur.trim() !== '' && !/[\s(]$/.test(cur) && !/(AND|OR)\s+$/i.test(cur);
  q.value = cur.trim() === '' ? btn.dataset.term : (needsAnd ? cur + ' AND ' + btn.dataset.term : cur + (cur.endsWith(' ') ? '' : ' ') + btn.dataset.term);
  studies(false);
});
document.getElementById('query-out').addEventListener('click', (e) => {
  const btn = e.target.closest('button[data-study-index]');
  if (!btn) return;
  e.preventDefault();
  const d = document.querySelector('[data-study-details="' + btn.dataset.studyIndex + '"]');
  if (d) d.classList.toggle('hidden');
});
</script>
</body>
</html>
`))
