package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dashboard handles GET /, a single-page view of transactions, topics, and
// the live file-transforms stream. Incidental scaffolding around the
// conversion core.
func (a *API) dashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Format Bridge</title>
<style>
  body { font-family: sans-serif; margin: 2rem; background: #f7f7f9; color: #222; }
  h1 { font-size: 1.4rem; }
  section { background: #fff; border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border-bottom: 1px solid #eee; text-align: left; padding: 0.3rem 0.6rem; font-size: 0.9rem; }
  #events li { font-family: monospace; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Format Bridge</h1>
<section>
  <h2>Transactions</h2>
  <table id="transactions"><thead><tr><th>id</th><th>receivedAt</th><th>fields</th></tr></thead><tbody></tbody></table>
</section>
<section>
  <h2>Topics</h2>
  <table id="topics"><thead><tr><th>topic</th><th>messages</th></tr></thead><tbody></tbody></table>
</section>
<section>
  <h2>File transforms</h2>
  <ul id="events"></ul>
</section>
<script>
async function refresh() {
  const txns = await (await fetch('/api/transactions')).json();
  const tbody = document.querySelector('#transactions tbody');
  tbody.innerHTML = '';
  for (const t of txns.transactions) {
    const {id, receivedAt, ...fields} = t;
    const row = tbody.insertRow();
    row.insertCell().textContent = id;
    row.insertCell().textContent = receivedAt;
    row.insertCell().textContent = JSON.stringify(fields);
  }
  const topics = await (await fetch('/api/topics')).json();
  const topicBody = document.querySelector('#topics tbody');
  topicBody.innerHTML = '';
  for (const [name, count] of Object.entries(topics)) {
    const row = topicBody.insertRow();
    row.insertCell().textContent = name;
    row.insertCell().textContent = count;
  }
}
refresh();
setInterval(refresh, 5000);

const events = new EventSource('/api/subscribe/file-transforms');
events.addEventListener('message', (e) => {
  const li = document.createElement('li');
  li.textContent = e.data;
  document.getElementById('events').prepend(li);
});
</script>
</body>
</html>
`
